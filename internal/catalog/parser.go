// Package catalog turns namespace/class declaration text into member tables
// and publishes them as immutable snapshots.
package catalog

import (
	"regexp"
	"strings"

	"github.com/Lightwood13/msc/internal/errors"
	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/scan"
	"github.com/Lightwood13/msc/internal/types"
)

var newlineRe = regexp.MustCompile(`\r?\n`)

// SplitLines splits text on LF or CRLF.
func SplitLines(text string) []string {
	return newlineRe.Split(text, -1)
}

// ParseDeclarationFile parses every namespace block of text into namespaces,
// and every class block (with its array type) into classes. Parsing stops at
// the first unterminated namespace; an unterminated class truncates its
// namespace. Each truncation is reported as an *errors.DeclarationError;
// everything committed before it stays in the maps.
func ParseDeclarationFile(path, text string, namespaces, classes map[string]*types.MemberTable) error {
	lines := SplitLines(text)
	var errs []error
	for i := 0; i < len(lines); i++ {
		header, ok := grammar.MatchNamespaceHeader(lines[i])
		if !ok {
			continue
		}
		end := findEnd(lines, i, grammar.IsNamespaceEnd)
		if end < 0 {
			errs = append(errs, errors.NewDeclarationError(path, i, errors.BlockNamespace, header.Name))
			break
		}
		table, err := parseNamespace(path, header.Name, lines, i+1, end, classes)
		if err != nil {
			errs = append(errs, err)
		}
		namespaces[header.Name] = table
		i = end
	}
	return errors.NewMultiError(errs).ErrOrNil()
}

func findEnd(lines []string, from int, isEnd func(string) bool) int {
	for j := from; j < len(lines); j++ {
		if isEnd(lines[j]) {
			return j
		}
	}
	return -1
}

func parseNamespace(path, name string, lines []string, start, end int, classes map[string]*types.MemberTable) (*types.MemberTable, error) {
	table := types.NewMemberTable()
	prefix := memberPrefix(name, true)
	body := lines[start:end]

	for i := 0; i < len(body); i++ {
		header, ok := grammar.MatchClassHeader(body[i])
		if !ok {
			member, next := parseMemberAt(body, i, prefix)
			if member != nil {
				table.Add(member)
			}
			i = next
			continue
		}

		doc := commentsAbove(body, i)
		classEnd := findEnd(body, i, grammar.IsClassEnd)
		if classEnd < 0 {
			return table, errors.NewDeclarationError(path, start+i, errors.BlockClass, header.Name)
		}

		qualified := types.QualifyClass(name, header.Name)
		classes[qualified] = parseMembers(body[i+1:classEnd], memberPrefix(qualified, false))
		classes[qualified+types.ArraySuffix] = arrayTable(qualified)
		i = classEnd

		table.Completions = append(table.Completions,
			types.CompletionItem{
				Label:         header.Name,
				Kind:          types.CompletionClass,
				Detail:        "class " + header.Name,
				Documentation: doc,
			},
			types.CompletionItem{
				Label:  header.Name + types.ArraySuffix,
				Kind:   types.CompletionClass,
				Detail: "class " + header.Name + types.ArraySuffix,
			})
	}
	return table, nil
}

// memberPrefix is the qualifier shown in completion details.
func memberPrefix(owner string, namespace bool) string {
	if !namespace {
		return owner + "."
	}
	if owner == types.DefaultNamespace {
		return ""
	}
	return owner + "::"
}

func parseMembers(lines []string, prefix string) *types.MemberTable {
	table := types.NewMemberTable()
	for i := 0; i < len(lines); i++ {
		member, next := parseMemberAt(lines, i, prefix)
		if member != nil {
			table.Add(member)
		}
		i = next
	}
	return table
}

// parseMemberAt tries the function, constructor and field grammars in that
// order. It returns the index of the last line consumed.
func parseMemberAt(lines []string, i int, prefix string) (*types.Member, int) {
	line := lines[i]
	if fn, ok := grammar.MatchFunction(line); ok {
		return withDoc(functionMember(fn, prefix), commentsAbove(lines, i)), i
	}
	if ctor, ok := grammar.MatchConstructor(line); ok {
		return withDoc(constructorMember(ctor), commentsAbove(lines, i)), i
	}
	if field, ok := grammar.MatchField(line); ok {
		member := withDoc(fieldMember(field, prefix), commentsAbove(lines, i))
		if field.HasInitializer {
			if last, ok := scan.SkipBalancedToEnd(lines, i, len(lines)); ok {
				return member, last
			}
		}
		return member, i
	}
	return nil, i
}

func functionMember(fn grammar.FunctionDecl, prefix string) *types.Member {
	returnType := fn.ReturnType
	if returnType == "" {
		returnType = types.VoidType
	}
	detail := strings.TrimSpace(fn.ReturnType + " " + prefix + fn.Name + fn.Params)
	return &types.Member{
		Key:        fn.Name + "()",
		Kind:       types.MemberFunction,
		ReturnType: returnType,
		Completion: &types.CompletionItem{
			Label:          fn.Name,
			Kind:           types.CompletionMethod,
			Detail:         detail,
			InsertText:     fn.Name + "($0)",
			Snippet:        true,
			TriggerCommand: types.CommandTriggerParameterHints,
		},
		Signature: &types.Signature{Label: detail, Parameters: grammar.SplitParams(detail)},
	}
}

func constructorMember(ctor grammar.ConstructorDecl) *types.Member {
	label := ctor.Name + ctor.Params
	return &types.Member{
		Key:        ctor.Name + "()",
		Kind:       types.MemberConstructor,
		ReturnType: ctor.Name,
		Signature:  &types.Signature{Label: label, Parameters: grammar.SplitParams(label)},
	}
}

func fieldMember(field grammar.FieldDecl, prefix string) *types.Member {
	var modifiers string
	if field.Final {
		modifiers += "final "
	}
	if field.Relative {
		modifiers += "relative "
	}
	return &types.Member{
		Key:        field.Name,
		Kind:       types.MemberField,
		ReturnType: field.Type,
		Completion: &types.CompletionItem{
			Label:  field.Name,
			Kind:   types.CompletionVariable,
			Detail: modifiers + field.Type + " " + prefix + field.Name,
		},
	}
}

func withDoc(m *types.Member, doc string) *types.Member {
	if doc == "" {
		return m
	}
	m.Documentation = doc
	if m.Completion != nil {
		m.Completion.Documentation = doc
	}
	if m.Signature != nil {
		m.Signature.Documentation = doc
	}
	return m
}

// commentsAbove joins the contiguous comment lines directly above line i.
func commentsAbove(lines []string, i int) string {
	var parts []string
	for j := i - 1; j >= 0; j-- {
		text, ok := grammar.MatchComment(lines[j])
		if !ok {
			break
		}
		parts = append(parts, text)
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, " ")
}
