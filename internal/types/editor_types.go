package types

import "strings"

// Position is a zero based line and byte column.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open span on the document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// LineSpan builds a single line range.
func LineSpan(line, start, end int) Range {
	return Range{Start: Position{line, start}, End: Position{line, end}}
}

// Severity uses the LSP numbering.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic sources
const (
	SourceError   = "msc-error"
	SourceWarning = "msc-warning"
)

// Diagnostic is one structural finding.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Source   string   `json:"source"`
}

// CompletionKind uses the LSP numbering.
type CompletionKind int

const (
	CompletionText     CompletionKind = 1
	CompletionMethod   CompletionKind = 2
	CompletionVariable CompletionKind = 6
	CompletionClass    CompletionKind = 7
	CompletionModule   CompletionKind = 9
	CompletionKeyword  CompletionKind = 14
	CompletionSnippet  CompletionKind = 15
)

// Editor commands attached to completion items.
const (
	CommandTriggerParameterHints = "editor.action.triggerParameterHints"
	CommandTriggerSuggest        = "editor.action.triggerSuggest"
)

// CompletionItem is transport neutral; the LSP layer maps it onto the wire.
type CompletionItem struct {
	Label          string         `json:"label" yaml:"label" toml:"label"`
	Kind           CompletionKind `json:"kind" yaml:"kind" toml:"kind"`
	Detail         string         `json:"detail,omitempty" yaml:"detail,omitempty" toml:"detail,omitempty"`
	Documentation  string         `json:"documentation,omitempty" yaml:"documentation,omitempty" toml:"documentation,omitempty"`
	InsertText     string         `json:"insertText,omitempty" yaml:"insertText,omitempty" toml:"insertText,omitempty"`
	FilterText     string         `json:"filterText,omitempty" yaml:"filterText,omitempty" toml:"filterText,omitempty"`
	Snippet        bool           `json:"snippet,omitempty" yaml:"snippet,omitempty" toml:"snippet,omitempty"`
	TriggerCommand string         `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
}

// Hover is the resolved symbol under the cursor.
type Hover struct {
	Type          string `json:"type"`
	QualifiedName string `json:"qualifiedName"`
	Documentation string `json:"documentation,omitempty"`
}

// Markdown renders the hover as a fenced block followed by documentation.
func (h Hover) Markdown() string {
	var b strings.Builder
	b.WriteString("```msc\n")
	if h.Type != VoidType {
		b.WriteString(h.Type)
		b.WriteByte(' ')
	}
	b.WriteString(h.QualifiedName)
	b.WriteString("\n```")
	if h.Documentation != "" {
		b.WriteByte('\n')
		b.WriteString(h.Documentation)
	}
	return b.String()
}

// SignatureHelp lists the overloads of the call enclosing the cursor.
type SignatureHelp struct {
	Signatures      []Signature `json:"signatures"`
	ActiveSignature int         `json:"activeSignature"`
	ActiveParameter int         `json:"activeParameter"`
}
