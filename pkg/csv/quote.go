package csv

import (
	"strings"
)

// fieldQuoter decides whether a field is quoted and escapes embedded quotes.
// Escaping always doubles the quote character.
type fieldQuoter struct {
	delim   rune
	quote   rune
	mode    QuoteMode
	escaped string
}

func newFieldQuoter(opts WriterOptions) fieldQuoter {
	return fieldQuoter{
		delim:   opts.Delimiter,
		quote:   opts.Quote,
		mode:    opts.QuoteMode,
		escaped: string([]rune{opts.Quote, opts.Quote}),
	}
}

// needsQuotes reports whether field must be enclosed in quotes.
func (q fieldQuoter) needsQuotes(field string) bool {
	switch q.mode {
	case QuoteAlways:
		return true
	case QuoteNonNumeric:
		return !isNumeric(field)
	}
	for _, r := range field {
		if r == q.delim || r == q.quote || r == '\r' || r == '\n' {
			return true
		}
	}
	return false
}

// quoted returns field as it appears in the output.
func (q fieldQuoter) quoted(field string) string {
	if !q.needsQuotes(field) {
		return field
	}
	var sb strings.Builder
	sb.Grow(len(field) + 2)
	sb.WriteRune(q.quote)
	if strings.ContainsRune(field, q.quote) {
		sb.WriteString(strings.ReplaceAll(field, string(q.quote), q.escaped))
	} else {
		sb.WriteString(field)
	}
	sb.WriteRune(q.quote)
	return sb.String()
}

// isNumeric reports whether s is made of ASCII digits with at most one '.'.
// The empty string is numeric.
func isNumeric(s string) bool {
	dot := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.':
			if dot {
				return false
			}
			dot = true
		case c < '0' || c > '9':
			return false
		}
	}
	return true
}
