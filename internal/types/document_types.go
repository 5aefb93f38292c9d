package types

import "sort"

// BuiltinLine is the declaration line of variables present before the document starts.
const BuiltinLine = -1

// LocalVariable is one declaration of a script variable. Bounded is false
// for variables that live to the end of the document.
type LocalVariable struct {
	Name             string
	Type             string
	DeclaredAtLine   int
	UndeclaredAtLine int
	Bounded          bool
}

// VisibleAt reports whether the variable is in scope at line.
func (v LocalVariable) VisibleAt(line int) bool {
	if v.DeclaredAtLine > line {
		return false
	}
	return !v.Bounded || line < v.UndeclaredAtLine
}

// UsingMark records a using directive.
type UsingMark struct {
	AtLine    int
	Namespace string
}

// DocumentView is the scope data of one document. It is rebuilt on every
// edit and never mutated after construction.
type DocumentView struct {
	Variables map[string][]LocalVariable
	Usings    []UsingMark
}

// NewDocumentView returns an empty view.
func NewDocumentView() *DocumentView {
	return &DocumentView{Variables: make(map[string][]LocalVariable)}
}

// Lookup returns the visible declaration of name at line. The latest
// declaration wins; among equal lines the later entry wins.
func (d *DocumentView) Lookup(name string, line int) (LocalVariable, bool) {
	var (
		found LocalVariable
		ok    bool
	)
	if d == nil {
		return found, false
	}
	for _, v := range d.Variables[name] {
		if !v.VisibleAt(line) {
			continue
		}
		if !ok || v.DeclaredAtLine >= found.DeclaredAtLine {
			found, ok = v, true
		}
	}
	return found, ok
}

// VisibleAt returns every variable declaration in scope at line, ordered by
// name then declaration line.
func (d *DocumentView) VisibleAt(line int) []LocalVariable {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.Variables))
	for name := range d.Variables {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []LocalVariable
	for _, name := range names {
		for _, v := range d.Variables[name] {
			if v.VisibleAt(line) {
				out = append(out, v)
			}
		}
	}
	return out
}
