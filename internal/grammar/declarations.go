// Package grammar holds the line-level pattern matchers of the msc language.
// Every matcher returns a typed capture and a match flag.
package grammar

import (
	"regexp"
	"strings"
)

// Block markers of declaration files.
const (
	NamespaceEnd = "@endnamespace"
	ClassEnd     = "@endclass"
)

const (
	identPart    = `[a-zA-Z0-9_]*`
	typeNamePart = `(?:[a-zA-Z]` + identPart + `::)?[A-Z]` + identPart + `(?:\[\])?`
	memberPart   = `[a-z]` + identPart
)

var (
	namespaceHeaderRe = regexp.MustCompile(`^\s*@namespace\s+([a-zA-Z]` + identPart + `|__default__)\s*$`)
	classHeaderRe     = regexp.MustCompile(`^\s*@class\s+([A-Z]` + identPart + `)\s*$`)
	functionRe        = regexp.MustCompile(`^\s*(?:(` + typeNamePart + `)\s+)?(` + memberPart + `)\s*(\(.*\))\s*$`)
	constructorRe     = regexp.MustCompile(`^\s*([A-Z]` + identPart + `)\s*(\(.*\))\s*$`)
	fieldRe           = regexp.MustCompile(`^\s*(relative\s+)?(final\s+)?(relative\s+)?(` + typeNamePart + `)\s+(` + memberPart + `)\s*(=.*)?$`)
	commentRe         = regexp.MustCompile(`^\s*#\s*(.*)$`)
	paramCommentRe    = regexp.MustCompile(`^\s*#(?:.*\()?(\s*,?\s*` + typeNamePart + `\s+` + memberPart + `)+(?:\s*\))?\s*$`)
	paramRe           = regexp.MustCompile(`(` + typeNamePart + `)\s+(` + memberPart + `)`)
	typeNameRe        = regexp.MustCompile(`^` + typeNamePart + `$`)
	memberNameRe      = regexp.MustCompile(`^` + memberPart + `$`)
	paramListRe       = regexp.MustCompile(`\((.*)\)`)
)

// NamespaceHeader is an "@namespace NAME" line.
type NamespaceHeader struct {
	Name string
}

func MatchNamespaceHeader(line string) (NamespaceHeader, bool) {
	m := namespaceHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return NamespaceHeader{}, false
	}
	return NamespaceHeader{Name: m[1]}, true
}

// IsNamespaceEnd reports an "@endnamespace" line.
func IsNamespaceEnd(line string) bool {
	return strings.TrimSpace(line) == NamespaceEnd
}

// ClassHeader is an "@class Name" line.
type ClassHeader struct {
	Name string
}

func MatchClassHeader(line string) (ClassHeader, bool) {
	m := classHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return ClassHeader{}, false
	}
	return ClassHeader{Name: m[1]}, true
}

// IsClassEnd reports an "@endclass" line.
func IsClassEnd(line string) bool {
	return strings.TrimSpace(line) == ClassEnd
}

// FunctionDecl is "[Type ]name(params)". ReturnType is empty when omitted.
// Params keeps the surrounding parentheses.
type FunctionDecl struct {
	ReturnType string
	Name       string
	Params     string
}

func MatchFunction(line string) (FunctionDecl, bool) {
	m := functionRe.FindStringSubmatch(line)
	if m == nil {
		return FunctionDecl{}, false
	}
	return FunctionDecl{ReturnType: m[1], Name: m[2], Params: m[3]}, true
}

// ConstructorDecl is "Name(params)".
type ConstructorDecl struct {
	Name   string
	Params string
}

func MatchConstructor(line string) (ConstructorDecl, bool) {
	m := constructorRe.FindStringSubmatch(line)
	if m == nil {
		return ConstructorDecl{}, false
	}
	return ConstructorDecl{Name: m[1], Params: m[2]}, true
}

// FieldDecl is "[relative ][final ][relative ]Type name[ = init]".
// Initializer holds the text after '=' on the declaring line.
type FieldDecl struct {
	Final          bool
	Relative       bool
	Type           string
	Name           string
	HasInitializer bool
	Initializer    string
}

func MatchField(line string) (FieldDecl, bool) {
	m := fieldRe.FindStringSubmatch(line)
	if m == nil {
		return FieldDecl{}, false
	}
	d := FieldDecl{
		Relative: m[1] != "" || m[3] != "",
		Final:    m[2] != "",
		Type:     m[4],
		Name:     m[5],
	}
	if m[6] != "" {
		d.HasInitializer = true
		d.Initializer = strings.TrimSpace(m[6][1:])
	}
	return d, true
}

// MatchComment returns the text of a "# text" line.
func MatchComment(line string) (string, bool) {
	m := commentRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimRightFunc(m[1], isSpace), true
}

// Param is one "Type name" pair.
type Param struct {
	Type string
	Name string
}

// MatchParamComment parses a first-line comment such as "# (Int a, Player p)".
func MatchParamComment(line string) ([]Param, bool) {
	if !paramCommentRe.MatchString(line) {
		return nil, false
	}
	open := strings.IndexByte(line, '(')
	closing := strings.IndexByte(line, ')')

	start := open
	if start == -1 {
		start = strings.IndexByte(line, '#')
	}
	end := closing
	if end == -1 || end < start+1 {
		end = len(line)
	}

	var params []Param
	for _, part := range strings.Split(line[start+1:end], ",") {
		m := paramRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		params = append(params, Param{Type: m[1], Name: m[2]})
	}
	return params, true
}

// IsTypeName reports "[ns::]Name[[]]".
func IsTypeName(s string) bool {
	return typeNameRe.MatchString(s)
}

// IsMemberName reports a lowercase-initial identifier.
func IsMemberName(s string) bool {
	return memberNameRe.MatchString(s)
}

// SplitParams returns the trimmed comma separated parameters inside the
// first parenthesized span of label.
func SplitParams(label string) []string {
	m := paramListRe.FindStringSubmatch(label)
	if m == nil {
		return nil
	}
	if strings.TrimSpace(m[1]) == "" {
		return []string{}
	}
	parts := strings.Split(m[1], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// IsIdentByte reports [a-zA-Z0-9_].
func IsIdentByte(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\v' || r == '\f'
}
