// Package tokenizer provides the line scanner underneath the CSV grammar.
package tokenizer

// Line terminators recognized by the scanner.
// CRLF is consumed as a single unit and takes priority over a lone CR.
const (
	CRLF = "\r\n"
	LF   = "\n"
	CR   = "\r"
	LS   = "\u2028" // line separator
	PS   = "\u2029" // paragraph separator
	NEL  = "\u0085" // next line
)

// BOM is the byte-order mark. It is dropped when it is the first character of the input.
const BOM = '\uFEFF'

// IsTerminator reports whether r starts one of the recognized line terminators.
func IsTerminator(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029', '\u0085':
		return true
	}
	return false
}
