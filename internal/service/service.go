// Package service answers editor queries for msc scripts. It owns the
// symbol catalog and the analyzed state of every open document; transports
// such as the language server and the MCP server call into it.
package service

import (
	"sort"
	"strings"
	"sync"

	"github.com/Lightwood13/msc/internal/catalog"
	"github.com/Lightwood13/msc/internal/resolver"
	"github.com/Lightwood13/msc/internal/scope"
	"github.com/Lightwood13/msc/internal/types"
	"github.com/Lightwood13/msc/internal/validator"
)

// Options configure a Service.
type Options struct {
	// DisableDiagnostics turns off structural validation of documents.
	DisableDiagnostics bool
	Validator          validator.Options
}

// DefaultOptions returns options with validation enabled.
func DefaultOptions() Options {
	return Options{Validator: validator.DefaultOptions()}
}

// document is the analyzed state of one open script. Entries are replaced
// wholesale on every update and never mutated afterwards.
type document struct {
	lines       []string
	view        *types.DocumentView
	diagnostics []types.Diagnostic
}

func (d *document) line(n int) (string, bool) {
	if n < 0 || n >= len(d.lines) {
		return "", false
	}
	return d.lines[n], true
}

// prefix returns the text of line pos.Line before pos.Character.
func (d *document) prefix(pos types.Position) (string, bool) {
	line, ok := d.line(pos.Line)
	if !ok {
		return "", false
	}
	col := pos.Character
	if col < 0 {
		col = 0
	}
	if col > len(line) {
		col = len(line)
	}
	return line[:col], true
}

// Service is safe for concurrent use. Requests for the same document see
// either the previous or the next version of it, never a mix.
type Service struct {
	opts    Options
	catalog *catalog.Store

	mu        sync.RWMutex
	documents map[string]*document
}

// New creates a service with an empty catalog.
func New(opts Options) *Service {
	return &Service{
		opts:      opts,
		catalog:   catalog.NewStore(),
		documents: make(map[string]*document),
	}
}

// Catalog exposes the declaration store.
func (s *Service) Catalog() *catalog.Store {
	return s.catalog
}

// LoadDeclarationFile parses text as the declaration file at path and
// replaces its previous contribution. A truncated file still contributes
// what was read before the truncation; the returned error describes it.
func (s *Service) LoadDeclarationFile(path, text string) error {
	_, err := s.catalog.LoadFile(path, text)
	return err
}

// RemoveDeclarationFile drops the contribution of path.
func (s *Service) RemoveDeclarationFile(path string) bool {
	return s.catalog.RemoveFile(path)
}

// LoadDefaultDeclarations merges builtin declarations pushed by the host.
func (s *Service) LoadDefaultDeclarations(text string) error {
	return s.catalog.LoadDefaults(text)
}

// ReplaceWorkspace swaps every declaration file for files, keyed by path.
func (s *Service) ReplaceWorkspace(files map[string]string) error {
	return s.catalog.ReplaceAll(files)
}

// OpenOrUpdateDocument analyzes text and stores it as the current version
// of id. It returns the new diagnostics.
func (s *Service) OpenOrUpdateDocument(id, text string) []types.Diagnostic {
	doc := &document{
		lines:       catalog.SplitLines(text),
		view:        scope.Analyze(text),
		diagnostics: []types.Diagnostic{},
	}
	if !s.opts.DisableDiagnostics {
		doc.diagnostics = validator.Validate(text, s.opts.Validator)
	}

	s.mu.Lock()
	s.documents[id] = doc
	s.mu.Unlock()
	return doc.diagnostics
}

// CloseDocument forgets id.
func (s *Service) CloseDocument(id string) {
	s.mu.Lock()
	delete(s.documents, id)
	s.mu.Unlock()
}

// Documents lists the ids of open documents.
func (s *Service) Documents() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.documents))
	for id := range s.documents {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (s *Service) document(id string) (*document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	return doc, ok
}

// GetDiagnostics returns the diagnostics of the current version of id.
func (s *Service) GetDiagnostics(id string) []types.Diagnostic {
	doc, ok := s.document(id)
	if !ok {
		return []types.Diagnostic{}
	}
	return append([]types.Diagnostic{}, doc.diagnostics...)
}

// context binds one request to a catalog snapshot and a document version.
func (s *Service) context(doc *document, line int) resolver.Context {
	active, _ := scope.ActiveNamespace(doc.view.Usings, line)
	return resolver.Context{
		Catalog:         s.catalog.Snapshot(),
		View:            doc.view,
		ActiveNamespace: active,
		Line:            line,
	}
}

// GetHover resolves the word under pos.
func (s *Service) GetHover(id string, pos types.Position) (types.Hover, bool) {
	doc, ok := s.document(id)
	if !ok {
		return types.Hover{}, false
	}
	line, ok := doc.line(pos.Line)
	if !ok {
		return types.Hover{}, false
	}
	chain := resolver.ScanWordAt(line, pos.Character)
	if chain == nil {
		return types.Hover{}, false
	}

	ctx := s.context(doc, pos.Line)
	res, ok := ctx.Resolve(chain)
	if !ok {
		return types.Hover{}, false
	}

	hover := types.Hover{Type: res.Type, QualifiedName: res.QualifiedName}
	member, known := lookupQualified(ctx.Catalog, res.QualifiedName)
	if !known {
		return types.Hover{}, false
	}
	if member != nil {
		hover.Documentation = member.Documentation
	}
	return hover, true
}

// lookupQualified finds the member a qualified name refers to. known is
// false when the name points into a class or namespace that does not exist.
func lookupQualified(snap *catalog.Snapshot, name string) (member *types.Member, known bool) {
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		table, ok := snap.Class(name[:dot])
		if !ok {
			return nil, false
		}
		m, _ := table.Lookup(name[dot+1:])
		return m, true
	}
	if sep := strings.Index(name, "::"); sep >= 0 {
		table, ok := snap.Namespace(name[:sep])
		if !ok {
			return nil, false
		}
		m, _ := table.Lookup(name[sep+2:])
		return m, true
	}
	return nil, true
}
