package validator

import "strings"

type blockKind uint8

const (
	blockIf blockKind = iota
	blockFor
	blockReturn
)

func (k blockKind) opener() string {
	if k == blockFor {
		return "@for"
	}
	return "@if"
}

func (k blockKind) closer() string {
	if k == blockFor {
		return "@done"
	}
	return "@fi"
}

// block is one open control structure or post-return region.
type block struct {
	kind    blockKind
	line    int
	hadElse bool
}

// blockStack counts return frames so reachability checks stay O(1).
type blockStack struct {
	frames  []block
	returns int
}

func (b *blockStack) push(f block) {
	b.frames = append(b.frames, f)
	if f.kind == blockReturn {
		b.returns++
	}
}

func (b *blockStack) pop() (block, bool) {
	if len(b.frames) == 0 {
		return block{}, false
	}
	top := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]
	if top.kind == blockReturn {
		b.returns--
	}
	return top, true
}

func (b *blockStack) top() *block {
	if len(b.frames) == 0 {
		return nil
	}
	return &b.frames[len(b.frames)-1]
}

// popReturns drops trailing return frames; a return never blocks a closer.
func (b *blockStack) popReturns() {
	for t := b.top(); t != nil && t.kind == blockReturn; t = b.top() {
		b.pop()
	}
}

func (b *blockStack) afterReturn() bool {
	return b.returns > 0
}

// control applies s to the block stack and checks reachability.
func (p *pass) control(s stmt) {
	hadReturn := p.blocks.afterReturn()
	end := s.start + len(s.keyword)

	switch s.keyword {
	case "@if":
		p.blocks.push(block{kind: blockIf, line: s.line})

	case "@for":
		p.blocks.push(block{kind: blockFor, line: s.line})

	case "@fi", "@done":
		expected := blockIf
		if s.keyword == "@done" {
			expected = blockFor
		}
		p.blocks.popReturns()
		last, ok := p.blocks.pop()
		switch {
		case !ok:
			p.report(s.line, s.start, end, s.keyword+" without matching "+expected.opener())
		case last.kind != expected:
			p.report(s.line, s.start, end, "Mismatched "+s.keyword+": expected "+last.kind.closer())
		}

	case "@elseif", "@else":
		p.blocks.popReturns()
		last := p.blocks.top()
		if last == nil || last.kind != blockIf {
			p.report(s.line, s.start, end, "Mismatched "+s.keyword+": no matching @if")
			break
		}
		if last.hadElse {
			msg := "@elseif can't occur after @else in @if-fi block"
			if s.keyword == "@else" {
				msg = "Multiple @else in @if-@fi block"
			}
			p.report(s.line, s.start, end, msg)
		}
		if s.keyword == "@else" {
			last.hadElse = true
		}

	case "@return":
		p.blocks.push(block{kind: blockReturn, line: s.line})
	}

	if (s.keyword != "@return" && p.blocks.afterReturn()) || (s.keyword == "@return" && hadReturn) {
		p.warn(s.line, 0, s.length, "Unreachable code after @return")
	}
}

// unclosed reports every @if and @for still open at the end.
func (p *pass) unclosed(lines []string) {
	for _, b := range p.blocks.frames {
		if b.kind == blockReturn {
			continue
		}
		opener := b.kind.opener()
		start := strings.Index(lines[b.line], opener)
		p.report(b.line, start, start+len(opener), "Unclosed "+opener+" block")
	}
}
