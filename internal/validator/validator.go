// Package validator checks msc scripts for statement grammar and block
// nesting errors.
package validator

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/types"
)

// DefaultSuggestThreshold is the Jaro-Winkler score above which an unknown
// keyword gets a "did you mean" hint.
const DefaultSuggestThreshold = 0.85

// Options tune the validator. A zero SuggestThreshold disables hints.
type Options struct {
	SuggestThreshold float32
}

// DefaultOptions returns the options used when no config is loaded.
func DefaultOptions() Options {
	return Options{SuggestThreshold: DefaultSuggestThreshold}
}

const timeFormatMessage = "Time should be a number, optionally followed by one of:\n" +
	" - t (ticks)\n - s (seconds)\n - m (minutes)\n - h (hours)\n - d (days)\n - w (weeks)\n - y (years)"

// Validate returns every diagnostic of text. A document containing the
// ignore marker yields none.
func Validate(text string, opts Options) []types.Diagnostic {
	if strings.Contains(text, grammar.IgnoreErrorsMarker) {
		return []types.Diagnostic{}
	}

	lines := strings.Split(text, "\n")
	v := &pass{opts: opts, diagnostics: []types.Diagnostic{}}
	for i, line := range lines {
		v.line(i, strings.TrimSuffix(line, "\r"))
	}
	v.unclosed(lines)
	return v.diagnostics
}

// pass is the state of one validation run.
type pass struct {
	opts        Options
	blocks      blockStack
	diagnostics []types.Diagnostic
}

func (p *pass) report(line, start, end int, message string) {
	p.diagnostics = append(p.diagnostics, types.Diagnostic{
		Range:    types.LineSpan(line, start, end),
		Severity: types.SeverityError,
		Message:  message,
		Source:   types.SourceError,
	})
}

func (p *pass) warn(line, start, end int, message string) {
	p.diagnostics = append(p.diagnostics, types.Diagnostic{
		Range:    types.LineSpan(line, start, end),
		Severity: types.SeverityWarning,
		Message:  message,
		Source:   types.SourceWarning,
	})
}

// stmt is one non-comment line.
type stmt struct {
	line    int
	text    string // trimmed
	keyword string
	start   int // column of text in the raw line
	length  int // raw line length
}

func (p *pass) line(n int, raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "# ") {
		return
	}
	keyword := strings.Fields(trimmed)[0]
	s := stmt{
		line:    n,
		text:    trimmed,
		keyword: keyword,
		start:   strings.Index(raw, keyword),
		length:  len(raw),
	}
	p.syntax(s)
	p.control(s)
}

func (p *pass) syntax(s stmt) {
	if !grammar.IsKeyword(s.keyword) {
		p.report(s.line, s.start, s.start+len(s.keyword), p.unknownKeywordMessage(s.keyword))
		return
	}

	for _, ban := range grammar.BannedCommands(s.text) {
		p.report(s.line, s.start, s.length, ban.Message())
	}

	afterKeyword := s.start + len(s.keyword)
	switch s.keyword {
	case "@else", "@fi", "@done", "@cancel", "@slow", "@fast":
		if s.text != s.keyword {
			p.report(s.line, afterKeyword, s.length, s.keyword+" should be on its own line")
		}

	case "@if", "@elseif":
		if !grammar.HasCondition(s.text) {
			p.report(s.line, afterKeyword, s.length, fmt.Sprintf("Invalid %s syntax: condition cannot be empty", s.keyword))
		}

	case "@for":
		f, ok := grammar.MatchFor(s.text)
		if !ok {
			p.report(s.line, s.start, s.length, "Invalid @for syntax: expected\n@for <type> <variable> in <list>")
			break
		}
		p.checkVariableName(s, f.Variable, f.VarSpan)

	case "@define":
		d, ok := grammar.MatchDefine(s.text)
		if !ok {
			p.report(s.line, s.start, s.length, "Invalid @define syntax: expected\n@define type variable [= expression]")
			break
		}
		p.checkVariableName(s, d.Variable, d.VarSpan)
		if d.HasAssign && !d.HasInitializer {
			p.report(s.line, s.start+d.AssignEnd, s.length, "Invalid @define syntax: initializer cannot be empty")
		}

	case "@chatscript":
		c, ok := grammar.MatchChatscript(s.text)
		if !ok {
			p.report(s.line, s.start, s.length, "Invalid @chatscript syntax: expected\n@chatscript time group-name function")
			break
		}
		p.checkDuration(s, c.Time, c.TimeSpan)
		if !grammar.IsCallShape(c.Function) {
			p.report(s.line, s.start+c.FunctionSpan.Start, s.start+c.FunctionSpan.End,
				"Invalid function syntax in @chatscript: expected function call")
		}

	case "@cooldown", "@global_cooldown", "@delay":
		arg, ok := grammar.MatchDurationStatement(s.keyword, s.text)
		if !ok {
			p.report(s.line, s.start, s.length, fmt.Sprintf("Invalid %s syntax: expected\n%s time", s.keyword, s.keyword))
			break
		}
		p.checkDuration(s, arg.Value, arg.Span)

	case "@using":
		if _, ok := grammar.MatchUsing(s.text); !ok {
			p.report(s.line, s.start, s.length, "Invalid @using syntax: expected\n@using namespace")
		}

	case "@bypass", "@command", "@console":
		if !grammar.HasCommand(s.text) {
			p.report(s.line, s.start, s.length, fmt.Sprintf("Invalid %s syntax: expected\n%s /command", s.keyword, s.keyword))
		}
	}
}

func (p *pass) checkVariableName(s stmt, name string, span grammar.Span) {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		p.report(s.line, s.start+span.Start, s.start+span.End, "Variable names should start with a lowercase letter")
	}
}

func (p *pass) checkDuration(s stmt, value string, span grammar.Span) {
	if !grammar.IsDuration(value) {
		p.report(s.line, s.start+span.Start, s.start+span.End, timeFormatMessage)
	}
}

func (p *pass) unknownKeywordMessage(word string) string {
	msg := "Invalid script option " + word
	if p.opts.SuggestThreshold <= 0 {
		return msg
	}

	var (
		best      string
		bestScore float32
	)
	for _, k := range grammar.Keywords {
		score, err := edlib.StringsSimilarity(word, k, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = k, score
		}
	}
	if bestScore >= p.opts.SuggestThreshold {
		msg += ". Did you mean " + best + "?"
	}
	return msg
}
