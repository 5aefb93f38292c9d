package lsp

import (
	"strings"
	"unicode/utf8"

	"go.lsp.dev/protocol"

	"github.com/Lightwood13/msc/internal/catalog"
	"github.com/Lightwood13/msc/internal/types"
)

func u16Width(r rune) int {
	if r < 0x10000 {
		return 1
	}
	return 2
}

// byteColumn converts a UTF-16 column on line to a byte column, clamped to
// the line length.
func byteColumn(line string, character int) int {
	i := 0
	for i < len(line) && character > 0 {
		r, sz := utf8.DecodeRuneInString(line[i:])
		character -= u16Width(r)
		i += sz
	}
	return i
}

// utf16Column converts a byte column on line to UTF-16 code units.
func utf16Column(line string, col int) int {
	if col > len(line) {
		col = len(line)
	}
	n := 0
	for _, r := range line[:max(col, 0)] {
		n += u16Width(r)
	}
	return n
}

func lineAt(lines []string, n int) string {
	if n < 0 || n >= len(lines) {
		return ""
	}
	return lines[n]
}

func toEnginePosition(lines []string, p protocol.Position) types.Position {
	line := int(p.Line)
	return types.Position{Line: line, Character: byteColumn(lineAt(lines, line), int(p.Character))}
}

func fromEnginePosition(lines []string, p types.Position) protocol.Position {
	line := max(p.Line, 0)
	return protocol.Position{
		Line:      uint32(line),
		Character: uint32(utf16Column(lineAt(lines, line), p.Character)),
	}
}

func fromEngineRange(lines []string, r types.Range) protocol.Range {
	return protocol.Range{Start: fromEnginePosition(lines, r.Start), End: fromEnginePosition(lines, r.End)}
}

// offset converts p to a byte offset into text. Positions past a line end
// clamp to it; lines past the end clamp to len(text).
func offset(text string, p protocol.Position) int {
	start := 0
	for line := uint32(0); line < p.Line; line++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			return len(text)
		}
		start += i + 1
	}
	end := strings.IndexByte(text[start:], '\n')
	if end < 0 {
		end = len(text)
	} else {
		end += start
	}
	lineText := strings.TrimSuffix(text[start:end], "\r")
	return start + byteColumn(lineText, int(p.Character))
}

// applyChanges applies content changes in order. A change without a range
// replaces the whole text.
func applyChanges(text string, changes []contentChange) string {
	for _, ch := range changes {
		if ch.Range == nil {
			text = ch.Text
			continue
		}
		start := offset(text, ch.Range.Start)
		end := offset(text, ch.Range.End)
		if end < start {
			start, end = end, start
		}
		text = text[:start] + ch.Text + text[end:]
	}
	return text
}

func splitLines(text string) []string {
	return catalog.SplitLines(text)
}
