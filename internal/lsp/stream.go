package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"go.lsp.dev/jsonrpc2"

	"github.com/Lightwood13/msc/internal/debug"
	mscerrors "github.com/Lightwood13/msc/internal/errors"
)

// DefaultMaxMessageSize bounds the body of one incoming message.
const DefaultMaxMessageSize = 32 << 20

// stream is a jsonrpc2.Stream using Content-Length framing. Bodies above
// limit and bodies that are not JSON-RPC messages are skipped so one bad
// message does not end the session.
type stream struct {
	r     *bufio.Reader
	w     io.Writer
	mu    sync.Mutex
	limit int64
}

var _ jsonrpc2.Stream = (*stream)(nil)

func newStream(r io.Reader, w io.Writer, limit int64) *stream {
	if limit <= 0 {
		limit = DefaultMaxMessageSize
	}
	return &stream{r: bufio.NewReader(r), w: w, limit: limit}
}

// Read returns the next message. io.EOF means the peer closed the input
// between messages.
func (s *stream) Read(ctx context.Context) (jsonrpc2.Message, int64, error) {
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, total, err
		}
		length, n, err := s.readHeader()
		total += n
		if err != nil {
			return nil, total, err
		}

		if length > s.limit {
			skipped, err := io.CopyN(io.Discard, s.r, length)
			total += skipped
			if err != nil {
				return nil, total, err
			}
			debug.LogLSP("skipped message of %d bytes (limit %d)", length, s.limit)
			continue
		}

		data := make([]byte, length)
		read, err := io.ReadFull(s.r, data)
		total += int64(read)
		if err != nil {
			return nil, total, err
		}
		msg, err := jsonrpc2.DecodeMessage(data)
		if err != nil {
			debug.LogLSP("%v", mscerrors.NewProtocolError("decode", err))
			continue
		}
		return msg, total, nil
	}
}

func (s *stream) readHeader() (length, total int64, err error) {
	length = -1
	for {
		line, err := s.r.ReadString('\n')
		total += int64(len(line))
		if err != nil {
			if errors.Is(err, io.EOF) && line == "" && length < 0 && total == 0 {
				return 0, total, io.EOF
			}
			return 0, total, fmt.Errorf("failed reading header line: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || n < 0 {
			return 0, total, fmt.Errorf("invalid Content-Length %q", strings.TrimSpace(value))
		}
		length = n
	}
	if length < 0 {
		return 0, total, errors.New("missing Content-Length header")
	}
	return length, total, nil
}

// Write frames msg. Writes from different goroutines do not interleave.
func (s *stream) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("marshaling message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := fmt.Fprintf(s.w, "Content-Length: %d\r\n\r\n", len(body))
	total := int64(n)
	if err != nil {
		return total, err
	}
	n, err = s.w.Write(body)
	return total + int64(n), err
}

// Close leaves the underlying reader and writer open; they belong to the
// caller of Serve.
func (s *stream) Close() error {
	return nil
}
