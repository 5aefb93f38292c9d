// Package resolver turns the text before a cursor into a typed symbol
// reference without a full parser.
package resolver

import (
	"strings"

	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/scan"
)

// TokenKind tags one link of an access chain.
type TokenKind uint8

const (
	TokenIdent TokenKind = iota
	TokenCall
	TokenSubscript
	TokenNamespace
)

// Token is one link of an access chain. Name is empty for subscripts.
type Token struct {
	Kind TokenKind
	Name string
}

// Key is the member lookup key of the token.
func (t Token) Key() string {
	if t.Kind == TokenCall {
		return t.Name + "()"
	}
	return t.Name
}

func (t Token) String() string {
	switch t.Kind {
	case TokenCall:
		return t.Name + "()"
	case TokenSubscript:
		return "[]"
	case TokenNamespace:
		return t.Name + "::"
	default:
		return t.Name
	}
}

// Chain is an access chain in source order.
type Chain []Token

func (c Chain) String() string {
	var b strings.Builder
	for i, t := range c {
		if i > 0 && c[i-1].Kind != TokenNamespace && t.Kind != TokenSubscript {
			b.WriteByte('.')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// isIdentEnd reports characters that may precede an identifier in a chain.
func isIdentEnd(c byte) bool {
	return c == ':' || isChainStop(c)
}

// isChainStop reports characters that end a chain successfully.
func isChainStop(c byte) bool {
	switch c {
	case '.', ' ', '\t', '\r', '\n', '\v', '\f',
		'(', '[', '{', '+', '-', '*', '/', '%', '^', '!', '=', '<', '>', '&', '|', ',':
		return true
	}
	return false
}

// ScanChainBackward returns the access chain that ends at the last '.'
// before cursor. The partial word after that dot is ignored. Any
// unbalanced bracket, quote or unexpected character yields nil.
func ScanChainBackward(line string, cursor int) Chain {
	cursor = min(max(cursor, 0), len(line))
	text := line[:cursor]

	i := len(text) - 1
	for ; i >= 0; i-- {
		if text[i] == '.' {
			break
		}
		if !grammar.IsIdentByte(text[i]) {
			return nil
		}
	}
	if i < 0 {
		return nil
	}

	var reversed Chain
	scoped := false
	for i >= 0 {
		switch c := text[i]; {
		case c == '.':
			if i == 0 {
				return nil
			}
			subscript := false
			j, ok := scan.SkipBalancedBackward(text, i-1, ']')
			if !ok {
				return nil
			}
			if j < i-1 {
				subscript = true
				i = j
			}
			call := false
			j, ok = scan.SkipBalancedBackward(text, i-1, ')')
			if !ok {
				return nil
			}
			if j < i-1 {
				call = true
				i = j
			}
			if i <= 0 {
				return nil
			}
			start, ok := identBefore(text, i)
			if !ok {
				return nil
			}
			if subscript {
				reversed = append(reversed, Token{Kind: TokenSubscript})
			}
			kind := TokenIdent
			if call {
				kind = TokenCall
			}
			reversed = append(reversed, Token{Kind: kind, Name: text[start:i]})
			i = start - 1

		case c == ':':
			if scoped || i < 2 || text[i-1] != ':' {
				return nil
			}
			scoped = true
			start, ok := identBefore(text, i-1)
			if !ok {
				return nil
			}
			reversed = append(reversed, Token{Kind: TokenNamespace, Name: text[start : i-1]})
			i = start - 1

		case isChainStop(c):
			return reverse(reversed)

		default:
			return nil
		}
	}
	return reverse(reversed)
}

// identBefore returns the start of the non-empty identifier ending at end.
// Identifiers do not start with a digit.
func identBefore(text string, end int) (int, bool) {
	k := end - 1
	for ; k >= 0; k-- {
		if isIdentEnd(text[k]) {
			break
		}
		if !grammar.IsIdentByte(text[k]) {
			return 0, false
		}
	}
	if k+1 == end || isDigit(text[k+1]) {
		return 0, false
	}
	return k + 1, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func reverse(c Chain) Chain {
	out := make(Chain, len(c))
	for i, t := range c {
		out[len(c)-1-i] = t
	}
	return out
}

// ScanWordAt builds the chain naming the word under col. The word is
// extended to its end; a following '(' marks a call. A following ':' means
// the word is a namespace qualifier and has no chain.
func ScanWordAt(line string, col int) Chain {
	line = strings.TrimRight(line, " \t\r\n")
	if col < 0 || col >= len(line) || !grammar.IsIdentByte(line[col]) {
		return nil
	}
	end := col
	for end < len(line) && grammar.IsIdentByte(line[end]) {
		end++
	}

	word := line[:end]
	switch {
	case end < len(line) && line[end] == ':':
		return nil
	case end < len(line) && line[end] == '(':
		word += "().a"
	default:
		word += ".a"
	}
	return ScanChainBackward(word, len(word))
}
