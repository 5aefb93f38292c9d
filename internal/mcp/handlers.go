package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Lightwood13/msc/internal/types"
)

// HoverResult is the msc_hover response.
type HoverResult struct {
	Found         bool   `json:"found"`
	Type          string `json:"type,omitempty"`
	QualifiedName string `json:"qualified_name,omitempty"`
	Documentation string `json:"documentation,omitempty"`
	Markdown      string `json:"markdown,omitempty"`
}

// CompletionResult is the msc_completion response.
type CompletionResult struct {
	Items     []types.CompletionItem `json:"items"`
	Total     int                    `json:"total"`
	Truncated bool                   `json:"truncated,omitempty"`
}

// DiagnosticsResult is the msc_diagnostics response.
type DiagnosticsResult struct {
	Diagnostics []types.Diagnostic `json:"diagnostics"`
	Errors      int                `json:"errors"`
	Warnings    int                `json:"warnings"`
}

// CatalogResult is the msc_catalog response. Exactly one of the listing
// or the member table is filled.
type CatalogResult struct {
	Namespaces []string           `json:"namespaces,omitempty"`
	Classes    []string           `json:"classes,omitempty"`
	Name       string             `json:"name,omitempty"`
	Table      *types.MemberTable `json:"table,omitempty"`
}

func (s *Server) handleHover(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "msc_hover"
	var params PositionParams
	if err := parseParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse(op, err)
	}
	if err := params.validate(); err != nil {
		return createErrorResponse(op, err)
	}
	id, _, done, err := s.openScript(ctx, params.ScriptParams)
	if err != nil {
		return createErrorResponse(op, err)
	}
	defer done()

	hover, ok := s.svc.GetHover(id, params.position())
	if !ok {
		return createJSONResponse(HoverResult{})
	}
	return createJSONResponse(HoverResult{
		Found:         true,
		Type:          hover.Type,
		QualifiedName: hover.QualifiedName,
		Documentation: hover.Documentation,
		Markdown:      hover.Markdown(),
	})
}

func (s *Server) handleCompletion(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "msc_completion"
	var params PositionParams
	if err := parseParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse(op, err)
	}
	if err := params.validate(); err != nil {
		return createErrorResponse(op, err)
	}
	id, _, done, err := s.openScript(ctx, params.ScriptParams)
	if err != nil {
		return createErrorResponse(op, err)
	}
	defer done()

	items := s.svc.GetCompletions(id, params.position())
	result := CompletionResult{Items: items, Total: len(items)}
	if params.Max > 0 && len(items) > params.Max {
		result.Items = items[:params.Max]
		result.Truncated = true
	}
	return createJSONResponse(result)
}

func (s *Server) handleSignatureHelp(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "msc_signature_help"
	var params PositionParams
	if err := parseParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse(op, err)
	}
	if err := params.validate(); err != nil {
		return createErrorResponse(op, err)
	}
	id, _, done, err := s.openScript(ctx, params.ScriptParams)
	if err != nil {
		return createErrorResponse(op, err)
	}
	defer done()

	return createJSONResponse(s.svc.GetSignatureHelp(id, params.position()))
}

func (s *Server) handleDiagnostics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "msc_diagnostics"
	var params ScriptParams
	if err := parseParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse(op, err)
	}
	if err := params.validate(); err != nil {
		return createErrorResponse(op, err)
	}
	_, diagnostics, done, err := s.openScript(ctx, params)
	if err != nil {
		return createErrorResponse(op, err)
	}
	defer done()

	result := DiagnosticsResult{Diagnostics: diagnostics}
	for _, d := range diagnostics {
		if d.Severity == types.SeverityError {
			result.Errors++
		} else {
			result.Warnings++
		}
	}
	return createJSONResponse(result)
}

func (s *Server) handleCatalog(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "msc_catalog"
	var params CatalogParams
	if err := parseParams(req.Params.Arguments, &params); err != nil {
		return createErrorResponse(op, err)
	}
	snap := s.svc.Catalog().Snapshot()

	switch {
	case params.Namespace != "" && params.Class != "":
		return createErrorResponse(op, fmt.Errorf("namespace and class are mutually exclusive"))
	case params.Namespace != "":
		table, ok := snap.Namespace(params.Namespace)
		if !ok {
			return createErrorResponse(op, fmt.Errorf("unknown namespace %q", params.Namespace))
		}
		return createJSONResponse(CatalogResult{Name: params.Namespace, Table: table})
	case params.Class != "":
		table, ok := snap.Class(params.Class)
		if !ok {
			return createErrorResponse(op, fmt.Errorf("unknown class %q", params.Class))
		}
		return createJSONResponse(CatalogResult{Name: params.Class, Table: table})
	}
	return createJSONResponse(CatalogResult{
		Namespaces: snap.NamespaceNames(),
		Classes:    snap.ClassNames(),
	})
}
