package security

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrBinaryContent is returned for files that do not look like msc text.
var ErrBinaryContent = errors.New("file appears to be binary")

// ContentValidator rejects workspace files that are not plain text before
// they reach the declaration scanner. Only the first HeaderSize bytes are
// inspected.
type ContentValidator struct {
	HeaderSize int
	// MaxControlRatio is the share of control bytes above which a header
	// counts as binary.
	MaxControlRatio float64
}

// NewContentValidator returns a validator inspecting a 64KB header.
func NewContentValidator() *ContentValidator {
	return &ContentValidator{
		HeaderSize:      64 * 1024,
		MaxControlRatio: 0.3,
	}
}

// Signatures of formats commonly saved under a script extension by mistake.
var magicBytes = []struct {
	name  string
	magic []byte
}{
	{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"gif", []byte("GIF8")},
	{"pdf", []byte("%PDF-")},
	{"zip", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip", []byte{0x1F, 0x8B}},
	{"executable", []byte{0x7F, 'E', 'L', 'F'}},
	{"executable", []byte("MZ")},
}

// Validate returns an error wrapping ErrBinaryContent when data does not
// look like a text file.
func (v *ContentValidator) Validate(data []byte) error {
	header := data
	if v.HeaderSize > 0 && len(header) > v.HeaderSize {
		header = header[:v.HeaderSize]
	}
	if len(header) == 0 {
		return nil
	}

	for _, m := range magicBytes {
		if bytes.HasPrefix(header, m.magic) && v.isBinary(header) {
			return fmt.Errorf("%w: %s signature", ErrBinaryContent, m.name)
		}
	}
	if bytes.IndexByte(header, 0) >= 0 {
		return fmt.Errorf("%w: contains NUL bytes", ErrBinaryContent)
	}
	if v.isBinary(header) {
		return fmt.Errorf("%w: too many control characters", ErrBinaryContent)
	}
	if !validUTF8Prefix(header, len(data) > len(header)) {
		return fmt.Errorf("%w: invalid UTF-8", ErrBinaryContent)
	}
	return nil
}

func (v *ContentValidator) isBinary(data []byte) bool {
	control := 0
	for _, b := range data {
		// tab, LF, VT, FF and CR are text
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			control++
		}
	}
	return float64(control)/float64(len(data)) > v.MaxControlRatio
}

// validUTF8Prefix tolerates a rune cut off by header truncation.
func validUTF8Prefix(data []byte, truncated bool) bool {
	if utf8.Valid(data) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i < len(data); i++ {
		if utf8.Valid(data[:len(data)-i]) {
			return true
		}
	}
	return false
}
