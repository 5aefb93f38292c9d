// Package scan implements string- and bracket-aware skipping over msc source
// lines. Every helper is a pure function of (text, position); a false result
// means the span is unbalanced.
package scan

// SkipStringBackward moves from the closing quote at pos to its opening quote.
// Interpolations "{{ ... }}" inside the literal are skipped, quotes inside
// them included.
func SkipStringBackward(line string, pos int) (int, bool) {
	var stack []byte
	for ; pos >= 0; pos-- {
		switch {
		case line[pos] == '"':
			if len(stack) == 0 || stack[len(stack)-1] != '"' {
				stack = append(stack, '"')
			} else if pos == 0 || line[pos-1] != '\\' {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return pos, true
				}
			}
		case line[pos] == '}' && pos >= 1 && line[pos-1] == '}' && (pos == 1 || line[pos-2] != '\\'):
			if len(stack) == 0 || stack[len(stack)-1] != '"' {
				return 0, false
			}
			stack = append(stack, '}')
		case line[pos] == '{' && pos >= 1 && line[pos-1] == '{' && (pos == 1 || line[pos-2] != '\\'):
			if len(stack) == 0 || stack[len(stack)-1] != '}' {
				return 0, false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return 0, false
}

// SkipStringForward moves from the opening quote at pos to its closing quote.
func SkipStringForward(line string, pos int) (int, bool) {
	var stack []byte
	for ; pos < len(line); pos++ {
		switch {
		case line[pos] == '"':
			if len(stack) == 0 || stack[len(stack)-1] != '"' {
				stack = append(stack, '"')
			} else if pos == 0 || line[pos-1] != '\\' {
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					return pos, true
				}
			}
		case line[pos] == '{' && pos+1 < len(line) && line[pos+1] == '{' && (pos == 0 || line[pos-1] != '\\'):
			if len(stack) == 0 || stack[len(stack)-1] != '"' {
				return 0, false
			}
			stack = append(stack, '{')
		case line[pos] == '}' && pos+1 < len(line) && line[pos+1] == '}' && (pos == 0 || line[pos-1] != '\\'):
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return 0, false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return 0, false
}

// SkipBalancedBackward moves from the closer at pos (')' or ']') to its
// matching opener. When line[pos] is not closer, pos is returned unchanged.
func SkipBalancedBackward(line string, pos int, closer byte) (int, bool) {
	if pos < 0 || pos >= len(line) || line[pos] != closer {
		return pos, true
	}
	opener := byte('(')
	if closer == ']' {
		opener = '['
	}

	depth := 0
	for ; pos >= 0; pos-- {
		switch line[pos] {
		case '"':
			p, ok := SkipStringBackward(line, pos)
			if !ok {
				return 0, false
			}
			pos = p
		case closer:
			depth++
		case opener:
			depth--
			if depth == 0 {
				return pos, true
			}
		}
	}
	return 0, false
}

// SkipBalancedToEnd scans lines[start:end] forward and returns the first line
// index at which every '(' and '[' opened since start is closed.
func SkipBalancedToEnd(lines []string, start, end int) (int, bool) {
	var stack []byte
	for n := start; n < end && n < len(lines); n++ {
		line := lines[n]
		for pos := 0; pos < len(line); pos++ {
			switch c := line[pos]; c {
			case '"':
				p, ok := SkipStringForward(line, pos)
				if !ok {
					return 0, false
				}
				pos = p
			case '(', '[':
				stack = append(stack, c)
			case ')':
				if len(stack) == 0 || stack[len(stack)-1] != '(' {
					return 0, false
				}
				stack = stack[:len(stack)-1]
			case ']':
				if len(stack) == 0 || stack[len(stack)-1] != '[' {
					return 0, false
				}
				stack = stack[:len(stack)-1]
			}
		}
		if len(stack) == 0 {
			return n, true
		}
	}
	return 0, false
}
