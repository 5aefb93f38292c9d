// Package scope replays a script's block structure to find which local
// variables are visible on each line and which namespace is active.
package scope

import (
	"strings"

	"github.com/Lightwood13/msc/internal/catalog"
	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/types"
)

// Builtin variables present in every script.
var Builtins = []types.LocalVariable{
	{Name: "player", Type: "Player", DeclaredAtLine: types.BuiltinLine},
	{Name: "block", Type: "Block", DeclaredAtLine: types.BuiltinLine},
}

// Analyze builds the DocumentView of text. It never fails; statements it
// cannot read are skipped.
func Analyze(text string) *types.DocumentView {
	view := types.NewDocumentView()
	for _, b := range Builtins {
		view.Variables[b.Name] = append(view.Variables[b.Name], b)
	}

	lines := catalog.SplitLines(text)
	if params, ok := grammar.MatchParamComment(lines[0]); ok {
		for _, p := range params {
			commit(view, types.LocalVariable{Name: p.Name, Type: p.Type, DeclaredAtLine: 0})
		}
	}

	a := analyzer{view: view}
	for i, line := range lines {
		a.line(i, strings.Fields(line))
	}

	// Blocks still open at the end are being edited; their variables
	// stay visible to the end of the document.
	for len(a.frames) > 0 {
		for _, v := range a.pop() {
			commit(view, v)
		}
	}
	debug.LogScope("analyzed %d lines: %d names, %d usings", len(lines), len(view.Variables), len(view.Usings))
	return view
}

type analyzer struct {
	view   *types.DocumentView
	frames [][]types.LocalVariable
}

func (a *analyzer) push() {
	a.frames = append(a.frames, nil)
}

func (a *analyzer) pop() []types.LocalVariable {
	top := a.frames[len(a.frames)-1]
	a.frames = a.frames[:len(a.frames)-1]
	return top
}

func (a *analyzer) declare(v types.LocalVariable) {
	if len(a.frames) == 0 {
		commit(a.view, v)
		return
	}
	top := len(a.frames) - 1
	a.frames[top] = append(a.frames[top], v)
}

// closeFrame ends the innermost frame at line. Branch keywords open a
// fresh frame for the next arm.
func (a *analyzer) closeFrame(line int, reopen bool) {
	if len(a.frames) == 0 {
		return
	}
	for _, v := range a.pop() {
		v.UndeclaredAtLine = line
		v.Bounded = true
		commit(a.view, v)
	}
	if reopen {
		a.push()
	}
}

func (a *analyzer) line(i int, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	switch tokens[0] {
	case "@if":
		a.push()
	case "@for":
		a.push()
		if len(tokens) >= 3 && grammar.IsTypeName(tokens[1]) && grammar.IsMemberName(tokens[2]) {
			a.declare(types.LocalVariable{Name: tokens[2], Type: tokens[1], DeclaredAtLine: i})
		}
	case "@fi", "@done":
		a.closeFrame(i, false)
	case "@else", "@elseif":
		a.closeFrame(i, true)
	case "@define":
		if len(tokens) < 3 {
			return
		}
		name, _, _ := strings.Cut(tokens[2], "=")
		if grammar.IsTypeName(tokens[1]) && grammar.IsMemberName(name) {
			a.declare(types.LocalVariable{Name: name, Type: tokens[1], DeclaredAtLine: i})
		}
	case "@using":
		if len(tokens) == 2 {
			a.view.Usings = append(a.view.Usings, types.UsingMark{AtLine: i, Namespace: tokens[1]})
		}
	}
}

func commit(view *types.DocumentView, v types.LocalVariable) {
	view.Variables[v.Name] = append(view.Variables[v.Name], v)
}

// ActiveNamespace returns the namespace of the closest using directive
// strictly above line.
func ActiveNamespace(usings []types.UsingMark, line int) (string, bool) {
	best := -1
	var ns string
	for _, u := range usings {
		if u.AtLine > best && u.AtLine < line {
			best = u.AtLine
			ns = u.Namespace
		}
	}
	return ns, best >= 0
}
