package lsp

import (
	"context"
	"encoding/json"

	"go.lsp.dev/protocol"

	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/types"
)

const ignoreErrorsTitle = "Ignore errors in this file"

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(raw, v)
}

// ----- Text sync -----

func (s *Server) onDidOpen(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidOpenTextDocumentParams
	if err := decode(raw, &params); err != nil {
		return err
	}
	item := params.TextDocument
	uri := string(item.URI)
	s.docs[uri] = &textDocument{version: item.Version, text: item.Text}
	s.analyze(ctx, uri)
	return nil
}

func (s *Server) onDidChange(ctx context.Context, raw json.RawMessage) error {
	var params didChangeParams
	if err := decode(raw, &params); err != nil {
		return err
	}
	uri := string(params.TextDocument.URI)
	doc, ok := s.docs[uri]
	if !ok {
		debug.LogLSP("change for unopened document %s", uri)
		return nil
	}
	s.docs[uri] = &textDocument{
		version: params.TextDocument.Version,
		text:    applyChanges(doc.text, params.ContentChanges),
	}
	s.analyze(ctx, uri)
	return nil
}

func (s *Server) onDidSave(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidSaveTextDocumentParams
	if err := decode(raw, &params); err != nil {
		return err
	}
	uri := string(params.TextDocument.URI)
	doc, ok := s.docs[uri]
	if !ok {
		return nil
	}
	if params.Text != "" {
		s.docs[uri] = &textDocument{version: doc.version, text: params.Text}
	}
	s.analyze(ctx, uri)
	return nil
}

func (s *Server) onDidClose(ctx context.Context, raw json.RawMessage) error {
	var params protocol.DidCloseTextDocumentParams
	if err := decode(raw, &params); err != nil {
		return err
	}
	uri := string(params.TextDocument.URI)
	delete(s.docs, uri)
	s.svc.CloseDocument(uri)
	s.publish(ctx, uri, 0, []protocol.Diagnostic{})
	return nil
}

// analyze hands the current text of uri to the service and publishes the
// resulting diagnostics.
func (s *Server) analyze(ctx context.Context, uri string) {
	doc := s.docs[uri]
	found := s.svc.OpenOrUpdateDocument(uri, doc.text)

	lines := splitLines(doc.text)
	diagnostics := make([]protocol.Diagnostic, len(found))
	for i, d := range found {
		diagnostics[i] = toDiagnostic(lines, d)
	}
	s.publish(ctx, uri, doc.version, diagnostics)
}

func (s *Server) publish(ctx context.Context, uri string, version int32, diagnostics []protocol.Diagnostic) {
	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(uri),
		Version:     uint32(max(version, 0)),
		Diagnostics: diagnostics,
	}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		debug.LogLSP("failed to publish diagnostics for %s: %v", uri, err)
	}
}

func toDiagnostic(lines []string, d types.Diagnostic) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    fromEngineRange(lines, d.Range),
		Severity: protocol.DiagnosticSeverity(d.Severity),
		Source:   d.Source,
		Message:  d.Message,
	}
}

// ----- Language features -----

// position returns the engine position of a request. ok is false for
// documents that are not open.
func (s *Server) position(params protocol.TextDocumentPositionParams) (string, types.Position, bool) {
	uri := string(params.TextDocument.URI)
	doc, ok := s.docs[uri]
	if !ok {
		return uri, types.Position{}, false
	}
	return uri, toEnginePosition(splitLines(doc.text), params.Position), true
}

func (s *Server) onCompletion(raw json.RawMessage) ([]protocol.CompletionItem, error) {
	var params protocol.TextDocumentPositionParams
	if err := decode(raw, &params); err != nil {
		return nil, err
	}
	items := []protocol.CompletionItem{}
	uri, pos, ok := s.position(params)
	if !ok {
		return items, nil
	}
	for _, it := range s.svc.GetCompletions(uri, pos) {
		items = append(items, toCompletionItem(it))
	}
	return items, nil
}

func toCompletionItem(it types.CompletionItem) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:      it.Label,
		Kind:       protocol.CompletionItemKind(it.Kind),
		Detail:     it.Detail,
		InsertText: it.InsertText,
		FilterText: it.FilterText,
	}
	if it.Documentation != "" {
		item.Documentation = protocol.MarkupContent{Kind: protocol.Markdown, Value: it.Documentation}
	}
	if it.InsertText != "" {
		item.InsertTextFormat = protocol.InsertTextFormatPlainText
		if it.Snippet {
			item.InsertTextFormat = protocol.InsertTextFormatSnippet
		}
	}
	if it.TriggerCommand != "" {
		item.Command = &protocol.Command{Command: it.TriggerCommand}
	}
	return item
}

func (s *Server) onHover(raw json.RawMessage) (*protocol.Hover, error) {
	var params protocol.TextDocumentPositionParams
	if err := decode(raw, &params); err != nil {
		return nil, err
	}
	uri, pos, ok := s.position(params)
	if !ok {
		return nil, nil
	}
	hover, ok := s.svc.GetHover(uri, pos)
	if !ok {
		return nil, nil
	}
	return &protocol.Hover{Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: hover.Markdown()}}, nil
}

func (s *Server) onSignatureHelp(raw json.RawMessage) (*protocol.SignatureHelp, error) {
	var params protocol.TextDocumentPositionParams
	if err := decode(raw, &params); err != nil {
		return nil, err
	}
	uri, pos, ok := s.position(params)
	if !ok {
		return nil, nil
	}
	help := s.svc.GetSignatureHelp(uri, pos)
	if len(help.Signatures) == 0 {
		return nil, nil
	}

	out := &protocol.SignatureHelp{
		Signatures:      make([]protocol.SignatureInformation, len(help.Signatures)),
		ActiveSignature: uint32(max(help.ActiveSignature, 0)),
		ActiveParameter: uint32(max(help.ActiveParameter, 0)),
	}
	for i, sig := range help.Signatures {
		info := protocol.SignatureInformation{
			Label:      sig.Label,
			Parameters: make([]protocol.ParameterInformation, len(sig.Parameters)),
		}
		for j, p := range sig.Parameters {
			info.Parameters[j] = protocol.ParameterInformation{Label: p}
		}
		if sig.Documentation != "" {
			info.Documentation = protocol.MarkupContent{Kind: protocol.Markdown, Value: sig.Documentation}
		}
		out.Signatures[i] = info
	}
	return out, nil
}

// onCodeAction offers one quick fix per reported diagnostic that inserts
// the ignore marker at the top of the document.
func (s *Server) onCodeAction(raw json.RawMessage) ([]protocol.CodeAction, error) {
	var params protocol.CodeActionParams
	if err := decode(raw, &params); err != nil {
		return nil, err
	}
	actions := []protocol.CodeAction{}
	doc, ok := s.docs[string(params.TextDocument.URI)]
	if !ok {
		return actions, nil
	}

	for _, d := range params.Context.Diagnostics {
		version := doc.version
		actions = append(actions, protocol.CodeAction{
			Title:       ignoreErrorsTitle,
			Kind:        protocol.QuickFix,
			Diagnostics: []protocol.Diagnostic{d},
			Edit: &protocol.WorkspaceEdit{DocumentChanges: []protocol.TextDocumentEdit{{
				TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: params.TextDocument.URI},
					Version:                &version,
				},
				Edits: []protocol.TextEdit{{NewText: grammar.IgnoreErrorsMarker + "\n"}},
			}}},
		})
	}
	return actions, nil
}
