package resolver

import (
	"github.com/Lightwood13/msc/internal/catalog"
	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/scan"
	"github.com/Lightwood13/msc/internal/types"
)

// Context is everything a resolution reads. It is a value over immutable
// inputs and is safe to share between goroutines.
type Context struct {
	Catalog         *catalog.Snapshot
	View            *types.DocumentView
	ActiveNamespace string
	Line            int
}

// Result names the resolved symbol and its type.
type Result struct {
	QualifiedName string
	Type          string
}

func isUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// Resolve walks chain left to right and returns the symbol it names.
func (c Context) Resolve(chain Chain) (Result, bool) {
	if len(chain) == 0 || c.Catalog == nil {
		return Result{}, false
	}

	var name, class string
	next := 1
	first := chain[0]

	if first.Kind == TokenNamespace {
		if len(chain) < 2 {
			return Result{}, false
		}
		next = 2
		second := chain[1]
		name = first.String() + second.Key()
		if isUpper(second.Name) {
			if second.Kind != TokenCall {
				return Result{}, false
			}
			class = first.String() + second.Name
		} else {
			ns, ok := c.Catalog.Namespace(first.Name)
			if !ok {
				return Result{}, false
			}
			member, ok := ns.Lookup(second.Key())
			if !ok {
				return Result{}, false
			}
			class = member.ReturnType
		}
	} else {
		name = first.Key()
		switch {
		case isUpper(first.Name):
			if first.Kind != TokenCall {
				return Result{}, false
			}
			class = first.Name
		default:
			v, found := types.LocalVariable{}, false
			if first.Kind == TokenIdent {
				v, found = c.View.Lookup(first.Name, c.Line)
			}
			if found {
				class = v.Type
				break
			}
			if c.ActiveNamespace == "" {
				return Result{}, false
			}
			ns, ok := c.Catalog.Namespace(c.ActiveNamespace)
			if !ok {
				return Result{}, false
			}
			member, ok := ns.Lookup(first.Key())
			if !ok {
				return Result{}, false
			}
			name = c.ActiveNamespace + "::" + first.Key()
			class = member.ReturnType
		}
	}

	for i := next; i < len(chain); i++ {
		tok := chain[i]
		if tok.Kind == TokenSubscript {
			if !types.IsArrayType(class) {
				return Result{}, false
			}
			name = class
			class = types.ElementType(class)
			continue
		}

		table, ok := c.Catalog.Class(class)
		if !ok {
			// Unqualified class references resolve through the active
			// namespace, but only for the link right after the head.
			if i != 1 || c.ActiveNamespace == "" {
				return Result{}, false
			}
			qualified := c.ActiveNamespace + "::" + class
			if table, ok = c.Catalog.Class(qualified); !ok {
				return Result{}, false
			}
			class = qualified
		}
		member, ok := table.Lookup(tok.Key())
		if !ok {
			return Result{}, false
		}
		name = class + "." + member.Key
		class = member.ReturnType
	}

	if !c.Catalog.HasClass(types.ElementType(class)) {
		if c.ActiveNamespace == "" || !c.Catalog.HasClass(c.ActiveNamespace+"::"+types.ElementType(class)) {
			return Result{}, false
		}
		class = c.ActiveNamespace + "::" + class
	}
	return Result{QualifiedName: name, Type: class}, true
}

// CallSite is the call enclosing a cursor.
type CallSite struct {
	Name            string
	ActiveParameter int
}

// isGroupingPrefix reports characters before '(' that make it a grouping paren.
func isGroupingPrefix(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f',
		'(', '[', '+', '-', '*', '/', '%', '^', '!', '=', '<', '>', '&', '|', ',':
		return true
	}
	return false
}

// FindCallUnderCursor finds the innermost unclosed call before cursor and
// counts the top-level commas between its '(' and the cursor.
func (c Context) FindCallUnderCursor(line string, cursor int) (CallSite, bool) {
	cursor = min(max(cursor, 0), len(line))
	text := line[:cursor]
	param := 0

	for i := len(text) - 1; i >= 0; i-- {
		switch ch := text[i]; ch {
		case '"':
			j, ok := scan.SkipStringBackward(text, i)
			if !ok {
				return CallSite{}, false
			}
			i = j
		case ')', ']':
			j, ok := scan.SkipBalancedBackward(text, i, ch)
			if !ok {
				return CallSite{}, false
			}
			i = j
		case '[':
			return CallSite{}, false
		case ',':
			param++
		case '(':
			if i == 0 {
				return CallSite{}, false
			}
			prev := text[i-1]
			if isGroupingPrefix(prev) {
				param = 0
				continue
			}
			if !grammar.IsIdentByte(prev) {
				return CallSite{}, false
			}
			callee := text[:i] + "()."
			res, ok := c.Resolve(ScanChainBackward(callee, len(callee)))
			if !ok {
				return CallSite{}, false
			}
			return CallSite{Name: res.QualifiedName, ActiveParameter: param}, true
		}
	}
	return CallSite{}, false
}
