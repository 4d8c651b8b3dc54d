package tscn

import "strings"

// splitTopLevel splits s on sep at nesting depth zero. Separators inside
// double-quoted strings (honoring \" escapes) or inside (), [] and {} are
// not split on. Each element is trimmed. An all-blank input yields no
// elements.
func splitTopLevel(s string, sep byte) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var (
		parts   []string
		depth   int
		inQuote bool
		escaped bool
		start   int
	)

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inQuote {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inQuote = false
			}
			continue
		}

		switch ch {
		case '"':
			inQuote = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	last := strings.TrimSpace(s[start:])
	// A trailing separator ("a, b, ") does not produce an empty element.
	if last != "" || len(parts) == 0 {
		parts = append(parts, last)
	}
	return parts
}

// hasBorders reports whether s starts with open and ends with close.
func hasBorders(s string, open, close byte) bool {
	return len(s) >= 2 && s[0] == open && s[len(s)-1] == close
}
