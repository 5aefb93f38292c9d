// Package mcp exposes the msc language service as Model Context Protocol
// tools so agents can query scripts without an editor.
package mcp

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/service"
	"github.com/Lightwood13/msc/internal/version"
	"github.com/Lightwood13/msc/internal/workspace"
)

// Server registers the msc tools on an MCP server.
type Server struct {
	svc    *service.Service
	loader *workspace.Loader
	server *mcp.Server
}

// New creates a server answering from svc. Script files named in tool
// calls are read through loader.
func New(svc *service.Service, loader *workspace.Loader) *Server {
	s := &Server{
		svc:    svc,
		loader: loader,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    version.ServerName,
			Version: version.Info(),
		}, nil),
	}
	s.registerTools()
	return s
}

// Start serves over stdio until the client disconnects or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves one session over t.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// documentID returns a fresh id so concurrent calls never share a document.
func (s *Server) documentID() string {
	return "mcp-" + uuid.New().String()
}

func scriptProperties() map[string]*jsonschema.Schema {
	return map[string]*jsonschema.Schema{
		"file": {
			Type:        "string",
			Description: "Path of the script to analyze. Either file or text is required.",
		},
		"text": {
			Type:        "string",
			Description: "Script content to analyze instead of a file",
		},
	}
}

func positionProperties() map[string]*jsonschema.Schema {
	props := scriptProperties()
	props["line"] = &jsonschema.Schema{Type: "integer", Description: "Zero based line"}
	props["character"] = &jsonschema.Schema{Type: "integer", Description: "Zero based byte column on the line"}
	return props
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "msc_hover",
		Description: "Resolve the symbol under a position of an msc script: its type, qualified name and documentation.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"line", "character"},
		},
	}, s.handleHover)

	s.server.AddTool(&mcp.Tool{
		Name:        "msc_completion",
		Description: "List completion candidates at a position of an msc script.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: withMax(positionProperties()),
			Required:   []string{"line", "character"},
		},
	}, s.handleCompletion)

	s.server.AddTool(&mcp.Tool{
		Name:        "msc_signature_help",
		Description: "Show the overloads of the call enclosing a position and the active parameter.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: positionProperties(),
			Required:   []string{"line", "character"},
		},
	}, s.handleSignatureHelp)

	s.server.AddTool(&mcp.Tool{
		Name:        "msc_diagnostics",
		Description: "Validate the statement structure of an msc script and report errors and warnings.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: scriptProperties(),
		},
	}, s.handleDiagnostics)

	s.server.AddTool(&mcp.Tool{
		Name:        "msc_catalog",
		Description: "Browse the symbol catalog. Without arguments lists namespaces and classes; with namespace or class shows its members and signatures.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"namespace": {Type: "string", Description: "Namespace to show, e.g. util or __default__"},
				"class":     {Type: "string", Description: "Class to show, e.g. Player or util::Pair"},
			},
		},
	}, s.handleCatalog)
}

func withMax(props map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	props["max"] = &jsonschema.Schema{Type: "integer", Description: "Maximum items to return (0 = all)"}
	return props
}
