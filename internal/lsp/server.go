// Package lsp serves the msc language service over stdio using the
// Language Server Protocol.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/Lightwood13/msc/internal/debug"
	mscerrors "github.com/Lightwood13/msc/internal/errors"
	"github.com/Lightwood13/msc/internal/service"
	"github.com/Lightwood13/msc/internal/version"
	"github.com/Lightwood13/msc/internal/watch"
	"github.com/Lightwood13/msc/internal/workspace"
	"github.com/Lightwood13/msc/pkg/pathutil"
)

// ErrExitWithoutShutdown is returned by Serve when the client sent exit
// before shutdown.
var ErrExitWithoutShutdown = errors.New("exit received before shutdown")

// Options configure a Server.
type Options struct {
	// Workspace selects declaration files. An empty Root is taken from the
	// initialize request.
	Workspace workspace.Options
	Watch     bool
	Debounce  time.Duration
	// MaxMessageSize bounds incoming message bodies, DefaultMaxMessageSize
	// when zero.
	MaxMessageSize int64
}

type textDocument struct {
	version int32
	text    string
}

// Server handles one client connection. Messages are handled in order on
// the connection's read goroutine.
type Server struct {
	svc  *service.Service
	opts Options
	conn jsonrpc2.Conn

	docs        map[string]*textDocument
	initialized bool
	shutdown    bool
	exited      bool
	exit        chan struct{}

	mu      sync.Mutex
	watcher *watch.Watcher
}

// New creates a server answering from svc.
func New(svc *service.Service, opts Options) *Server {
	return &Server{
		svc:  svc,
		opts: opts,
		docs: make(map[string]*textDocument),
		exit: make(chan struct{}),
	}
}

// Serve reads requests from r and writes responses to w until the client
// exits, r is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.conn = jsonrpc2.NewConn(newStream(r, w, s.opts.MaxMessageSize))
	s.conn.Go(ctx, s.handle)
	defer s.stopWatcher()

	select {
	case <-ctx.Done():
		_ = s.conn.Close()
		return ctx.Err()
	case <-s.exit:
		_ = s.conn.Close()
		return s.exitError()
	case <-s.conn.Done():
		// exit may be the last message before end of input.
		select {
		case <-s.exit:
			return s.exitError()
		default:
		}
		if err := s.conn.Err(); err != nil && !errors.Is(err, io.EOF) {
			return mscerrors.NewProtocolError("read", err)
		}
		return nil
	}
}

func (s *Server) exitError() error {
	if !s.shutdown {
		return ErrExitWithoutShutdown
	}
	return nil
}

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	method := req.Method()
	_, isCall := req.(*jsonrpc2.Call)
	debug.LogLSP("<- %s", method)

	if s.exited {
		return nil
	}
	if method == "exit" {
		s.exited = true
		close(s.exit)
		return nil
	}
	if !s.initialized && method != "initialize" {
		if isCall {
			return reply(ctx, nil, jsonrpc2.NewError(codeServerNotInitialized, "server not initialized"))
		}
		return nil
	}
	if s.shutdown && isCall {
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, "server is shutting down"))
	}

	params := req.Params()
	var (
		result any
		err    error
	)
	switch method {
	case "initialize":
		result, err = s.onInitialize(params)
	case "initialized":
		s.onInitialized(ctx)
	case "shutdown":
		s.stopWatcher()
		s.shutdown = true

	case "textDocument/didOpen":
		err = s.onDidOpen(ctx, params)
	case "textDocument/didChange":
		err = s.onDidChange(ctx, params)
	case "textDocument/didSave":
		err = s.onDidSave(ctx, params)
	case "textDocument/didClose":
		err = s.onDidClose(ctx, params)

	case "textDocument/completion":
		result, err = s.onCompletion(params)
	case "textDocument/hover":
		result, err = s.onHover(params)
	case "textDocument/signatureHelp":
		result, err = s.onSignatureHelp(params)
	case "textDocument/codeAction":
		result, err = s.onCodeAction(params)

	case "workspace/didChangeWatchedFiles":
		s.rescan(ctx)
	case methodProcessDefaultNamespaces:
		err = s.onProcessDefaultNamespaces(params)

	default:
		if isCall {
			return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, "method not found: "+method))
		}
		return nil
	}

	if err != nil {
		perr := mscerrors.NewProtocolError(method, err)
		debug.LogLSP("%v", perr)
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.InvalidParams, perr.Error()))
	}
	return reply(ctx, result, nil)
}

func (s *Server) onInitialize(raw json.RawMessage) (*protocol.InitializeResult, error) {
	var params protocol.InitializeParams
	if err := decode(raw, &params); err != nil {
		return nil, err
	}
	if s.opts.Workspace.Root == "" {
		s.opts.Workspace.Root = rootFromParams(params)
	}
	s.initialized = true
	debug.LogLSP("initialized with workspace root %q", s.opts.Workspace.Root)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
			},
			CompletionProvider:    &protocol.CompletionOptions{TriggerCharacters: []string{".", ":"}},
			SignatureHelpProvider: &protocol.SignatureHelpOptions{TriggerCharacters: []string{"(", ","}},
			HoverProvider:         true,
			CodeActionProvider:    true,
		},
		ServerInfo: &protocol.ServerInfo{Name: version.ServerName, Version: version.Info()},
	}, nil
}

func rootFromParams(params protocol.InitializeParams) string {
	switch {
	case params.RootURI != "":
		return pathutil.URIToPath(string(params.RootURI))
	case len(params.WorkspaceFolders) > 0:
		return pathutil.URIToPath(params.WorkspaceFolders[0].URI)
	default:
		return params.RootPath
	}
}

// onInitialized asks the host for its builtin declarations, loads the
// workspace and starts watching it.
func (s *Server) onInitialized(ctx context.Context) {
	if err := s.conn.Notify(ctx, methodGetDefaultNamespaces, nil); err != nil {
		debug.LogLSP("failed to request default namespaces: %v", err)
	}
	s.rescan(ctx)

	if !s.opts.Watch || s.opts.Workspace.Root == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return
	}
	w, err := watch.New(watch.Options{Workspace: s.opts.Workspace, Debounce: s.opts.Debounce}, s.svc)
	if err != nil {
		debug.LogLSP("file watcher unavailable: %v", err)
		return
	}
	if err := w.Start(ctx); err != nil {
		debug.LogLSP("file watcher failed to start: %v", err)
		_ = w.Stop()
		return
	}
	s.watcher = w
}

func (s *Server) stopWatcher() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		_ = s.watcher.Stop()
		s.watcher = nil
	}
}

// rescan replaces the catalog's declaration files with the workspace
// contents and re-analyzes the open documents against the new catalog.
// Unreadable files are logged and left out.
func (s *Server) rescan(ctx context.Context) {
	if s.opts.Workspace.Root == "" {
		return
	}
	start := time.Now()
	files, err := workspace.LoadWorkspace(ctx, s.opts.Workspace)
	if err != nil {
		debug.LogLSP("workspace scan: %v", err)
		if files == nil {
			return
		}
	}
	if err := s.svc.ReplaceWorkspace(files); err != nil {
		debug.LogLSP("workspace declarations: %v", err)
	}
	debug.LogLSP("loaded %d declaration files in %v", len(files), time.Since(start))

	for _, uri := range s.svc.Documents() {
		if _, ok := s.docs[uri]; ok {
			s.analyze(ctx, uri)
		}
	}
}

// onProcessDefaultNamespaces accepts the declaration text either bare or
// wrapped in an array.
func (s *Server) onProcessDefaultNamespaces(raw json.RawMessage) error {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var wrapped []string
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return err
		}
		text = strings.Join(wrapped, "\n")
	}
	if err := s.svc.LoadDefaultDeclarations(text); err != nil {
		debug.LogLSP("default declarations: %v", err)
	}
	return nil
}
