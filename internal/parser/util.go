package parser

import (
	"regexp"
	"strings"
)

func extractParens(s string) string {
	s = strings.TrimSpace(s)

	startIdx := strings.Index(s, "(")
	if startIdx == -1 {
		return ""
	}

	depth := 0

	for i := startIdx; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[startIdx+1 : i]
			}
		}
	}

	return ""
}

func splitByComma(s string) []string {
	var (
		parts   []string
		current strings.Builder
		depth   int
		inStr   bool
		strChar rune
	)

	for i, ch := range s {
		switch {
		case !inStr && (ch == '\'' || ch == '"'):
			inStr = true
			strChar = ch
			current.WriteRune(ch)

		case inStr && ch == strChar:
			if i+1 < len(s) && rune(s[i+1]) == strChar {
				current.WriteRune(ch)
				current.WriteRune(ch)
			} else {
				inStr = false

				current.WriteRune(ch)
			}

		case !inStr && ch == '(':
			depth++

			current.WriteRune(ch)

		case !inStr && ch == ')':
			depth--

			current.WriteRune(ch)

		case !inStr && ch == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(current.String()))
			current.Reset()

		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, strings.TrimSpace(current.String()))
	}

	return parts
}

func hasKeyword(s, keyword string) bool {
	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	return pattern.MatchString(s)
}

func extractAfterKeyword(s, keyword string) string {
	if keyword == "ON DELETE" || keyword == "ON UPDATE" {
		return extractActionAfterKeyword(s, keyword)
	}

	pattern := regexp.MustCompile(
		`(?i)\b` + regexp.QuoteMeta(
			keyword,
		) + `\s+(.+?)(?:\s+(?:NOT|NULL|CHECK|REFERENCES|PRIMARY|FOREIGN|UNIQUE|DEFAULT|CONSTRAINT)|$)`,
	)
	if matches := pattern.FindStringSubmatch(s); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	return ""
}

func extractActionAfterKeyword(s, keyword string) string {
	pattern := regexp.MustCompile(
		`(?i)\b` + regexp.QuoteMeta(
			keyword,
		) + `\s+(CASCADE|RESTRICT|NO\s+ACTION|SET\s+NULL|SET\s+DEFAULT)`,
	)
	if matches := pattern.FindStringSubmatch(s); len(matches) > 1 {
		action := strings.ToUpper(strings.Join(strings.Fields(matches[1]), " "))
		return action
	}

	return ""
}

// stripComments removes line and block comments while leaving
// single-quoted literals, quoted identifiers, and dollar-quoted bodies
// untouched, so "--" or "/*" inside a literal survives normalization.
func stripComments(s string) string { //nolint:cyclop,gocognit
	var out strings.Builder

	out.Grow(len(s))

	i := 0
	for i < len(s) {
		switch ch := s[i]; {
		case ch == '\'':
			j := i + 1
			for j < len(s) {
				if s[j] == '\'' {
					if j+1 < len(s) && s[j+1] == '\'' {
						j += 2
						continue
					}

					j++

					break
				}

				j++
			}

			out.WriteString(s[i:j])
			i = j

		case ch == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				j++
			}

			if j < len(s) {
				j++
			}

			out.WriteString(s[i:j])
			i = j

		case ch == '$':
			tag, ok := dollarQuoteTag(s[i:])
			if !ok {
				out.WriteByte(ch)
				i++

				continue
			}

			rest := strings.Index(s[i+len(tag):], tag)
			if rest == -1 {
				out.WriteString(s[i:])
				return out.String()
			}

			j := i + len(tag) + rest + len(tag)
			out.WriteString(s[i:j])
			i = j

		case ch == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}

		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			depth := 1
			i += 2

			for i < len(s) && depth > 0 {
				switch {
				case s[i] == '/' && i+1 < len(s) && s[i+1] == '*':
					depth++
					i += 2
				case s[i] == '*' && i+1 < len(s) && s[i+1] == '/':
					depth--
					i += 2
				default:
					i++
				}
			}

		default:
			out.WriteByte(ch)
			i++
		}
	}

	return out.String()
}

// dollarQuoteTag reads a $tag$ delimiter at the start of s.
func dollarQuoteTag(s string) (string, bool) {
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == '$' {
			return s[:i+1], true
		}

		isTagChar := c == '_' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9')
		if !isTagChar {
			return "", false
		}
	}

	return "", false
}

func normalizeWhitespace(s string) string {
	operators := []string{"!=", "<>", "<=", ">=", "=", "<", ">"}
	for _, op := range operators {
		// Add space before and after operator if not already present
		// Pattern: (non-space)(operator)(non-space) -> $1 $2 $3
		pattern := regexp.MustCompile(`([^\s])` + regexp.QuoteMeta(op) + `([^\s])`)
		s = pattern.ReplaceAllString(s, `$1 `+op+` $2`)
	}

	// Then collapse multiple spaces into single spaces
	s = regexp.MustCompile(`\s+`).ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
