package grammar

import (
	"regexp"
	"strings"
)

// Statement keywords accepted at the start of a script line.
var Keywords = []string{
	"@if", "@elseif", "@else", "@fi", "@for", "@done", "@define", "@var",
	"@player", "@chatscript", "@prompt", "@delay", "@command", "@bypass",
	"@console", "@cooldown", "@global_cooldown", "@using", "@cancel",
	"@fast", "@slow", "@return",
}

var keywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Keywords))
	for _, k := range Keywords {
		m[k] = struct{}{}
	}
	return m
}()

// IsKeyword reports whether word is a statement keyword.
func IsKeyword(word string) bool {
	_, ok := keywordSet[word]
	return ok
}

// IgnoreErrorsMarker disables diagnostics for the document containing it.
const IgnoreErrorsMarker = "# msc-ignore-errors"

// Span is a byte range inside a trimmed statement line.
type Span struct {
	Start int
	End   int
}

var (
	conditionRe  = regexp.MustCompile(`^@(if|elseif)\s+(.+)$`)
	forRe        = regexp.MustCompile(`^@for\s+([\w:]+)\s+(\w+)\s+in\s+(.+)$`)
	defineRe     = regexp.MustCompile(`^@define\s+([\w:\[\]]+)\s+(\w+)\s*(=\s*(.+)?)?$`)
	chatscriptRe = regexp.MustCompile(`^@chatscript\s+(\S+)\s+(\S+)\s+(\S+)$`)
	cooldownRe   = regexp.MustCompile(`^@(cooldown|global_cooldown)\s+(\S+)$`)
	delayRe      = regexp.MustCompile(`^@delay\s+(\S+)$`)
	usingRe      = regexp.MustCompile(`^@using\s+(\w+)$`)
	commandRe    = regexp.MustCompile(`^@(bypass|command|console)\s+(.+)$`)
	durationRe   = regexp.MustCompile(`^\d+[tsmhdwy]?$`)
)

// HasCondition reports "@if cond" or "@elseif cond" with a non-empty condition.
func HasCondition(stmt string) bool {
	return conditionRe.MatchString(stmt)
}

// ForStatement is "@for Type name in expr".
type ForStatement struct {
	Type     string
	Variable string
	VarSpan  Span
	Iterable string
}

func MatchFor(stmt string) (ForStatement, bool) {
	m := forRe.FindStringSubmatchIndex(stmt)
	if m == nil {
		return ForStatement{}, false
	}
	return ForStatement{
		Type:     stmt[m[2]:m[3]],
		Variable: stmt[m[4]:m[5]],
		VarSpan:  Span{m[4], m[5]},
		Iterable: stmt[m[6]:m[7]],
	}, true
}

// DefineStatement is "@define Type name [= expr]". AssignEnd is the offset
// just past the "=" clause when one is present.
type DefineStatement struct {
	Type           string
	Variable       string
	VarSpan        Span
	HasAssign      bool
	AssignEnd      int
	HasInitializer bool
}

func MatchDefine(stmt string) (DefineStatement, bool) {
	m := defineRe.FindStringSubmatchIndex(stmt)
	if m == nil {
		return DefineStatement{}, false
	}
	d := DefineStatement{
		Type:     stmt[m[2]:m[3]],
		Variable: stmt[m[4]:m[5]],
		VarSpan:  Span{m[4], m[5]},
	}
	if m[6] >= 0 {
		d.HasAssign = true
		d.AssignEnd = m[7]
		d.HasInitializer = m[8] >= 0
	}
	return d, true
}

// ChatscriptStatement is "@chatscript time group function()".
type ChatscriptStatement struct {
	Time         string
	TimeSpan     Span
	Group        string
	Function     string
	FunctionSpan Span
}

func MatchChatscript(stmt string) (ChatscriptStatement, bool) {
	m := chatscriptRe.FindStringSubmatchIndex(stmt)
	if m == nil {
		return ChatscriptStatement{}, false
	}
	return ChatscriptStatement{
		Time:         stmt[m[2]:m[3]],
		TimeSpan:     Span{m[2], m[3]},
		Group:        stmt[m[4]:m[5]],
		Function:     stmt[m[6]:m[7]],
		FunctionSpan: Span{m[6], m[7]},
	}, true
}

// IsCallShape reports text containing "(" before a later ")".
func IsCallShape(s string) bool {
	open := strings.IndexByte(s, '(')
	closing := strings.IndexByte(s, ')')
	return open >= 0 && closing >= 0 && open < closing
}

// DurationArgument is the single time argument of @cooldown,
// @global_cooldown and @delay.
type DurationArgument struct {
	Value string
	Span  Span
}

func MatchDurationStatement(keyword, stmt string) (DurationArgument, bool) {
	re, group := delayRe, 1
	if keyword == "@cooldown" || keyword == "@global_cooldown" {
		re, group = cooldownRe, 2
	}
	m := re.FindStringSubmatchIndex(stmt)
	if m == nil {
		return DurationArgument{}, false
	}
	s, e := m[2*group], m[2*group+1]
	return DurationArgument{Value: stmt[s:e], Span: Span{s, e}}, true
}

// IsDuration reports digits followed by an optional unit letter.
func IsDuration(s string) bool {
	return durationRe.MatchString(s)
}

// MatchUsing returns the namespace of "@using ns".
func MatchUsing(stmt string) (string, bool) {
	m := usingRe.FindStringSubmatch(stmt)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// HasCommand reports "@bypass|@command|@console <command>".
func HasCommand(stmt string) bool {
	return commandRe.MatchString(stmt)
}

// BanReason classifies a rejected command.
type BanReason int

const (
	BanPermission BanReason = iota
	BanChat
	BanExecutor
)

// Message is the diagnostic text of the ban.
func (r BanReason) Message() string {
	switch r {
	case BanPermission:
		return "Permission changing commands are banned in scripts"
	case BanChat:
		return "Chat commands executed by the player are prohibited in scripts"
	default:
		return "General command executors are banned in scripts"
	}
}

var bannedCommands = []struct {
	re     *regexp.Regexp
	reason BanReason
}{
	{regexp.MustCompile(`^@(bypass|console|command) /?(op|deop|setrank|lp|luckperms|permission|perms|perm) .*`), BanPermission},
	{regexp.MustCompile(`^@(bypass|console|command) /?(chat|gchat|echat|achat|schat|bchat|pchat|tchat|alert|p|t) .*`), BanChat},
	{regexp.MustCompile(`^@(bypass|console|command) /?\{\{.*`), BanExecutor},
}

// BannedCommands returns every ban rule the statement violates.
func BannedCommands(stmt string) []BanReason {
	var out []BanReason
	for _, b := range bannedCommands {
		if b.re.MatchString(stmt) {
			out = append(out, b.reason)
		}
	}
	return out
}
