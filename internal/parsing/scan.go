package parsing

// matchBrace scans forward from the '{' at start and returns the index of the brace
// that closes it. Braces inside JSON string literals are ignored and backslash escapes
// inside strings are honoured. ok is false when the input ends before depth returns to zero.
func matchBrace(text string, start int) (end int, ok bool) {
	if start < 0 || start >= len(text) || text[start] != '{' {
		return 0, false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return 0, false
}
