package csv

import (
	"errors"
	"fmt"

	"github.com/shapestone/csvcodec/internal/parser"
)

// ParseError is a grammar violation: a character other than a delimiter or a
// line terminator right after a closing quote. It carries the logical row,
// the physical line and column, and the offending character.
type ParseError = parser.ParseError

// MalformedError reports a document that cannot be read: an unterminated
// quoted field, a duplicate header or a failed header rename.
type MalformedError = parser.MalformedError

// Common reading errors
var (
	// ErrUnexpectedChar is wrapped by ParseError.
	ErrUnexpectedChar = parser.ErrUnexpectedChar

	// ErrUnterminatedQuote indicates the input ended inside a quoted field.
	ErrUnterminatedQuote = parser.ErrUnterminatedQuote

	// ErrDuplicateHeader indicates a repeated header name without auto-rename.
	ErrDuplicateHeader = parser.ErrDuplicateHeader

	// ErrHeaderRename indicates an auto-renamed header that collides with another one.
	ErrHeaderRename = parser.ErrHeaderRename

	// ErrFieldCount indicates a record has the wrong number of fields.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("csv: writer is closed")
)

// FieldCountError reports a row whose field count differs from the expected
// count under an error policy.
type FieldCountError struct {
	// Expected is the field count set by the header, the first row or
	// ReaderOptions.ExpectedFieldCount.
	Expected int
	// Actual is the field count of the offending row.
	Actual int
	// Row is the logical row (1-indexed), counting the header and dropped rows.
	Row int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("record on row %d: %v: expected %d, got %d", e.Row, ErrFieldCount, e.Expected, e.Actual)
}

// Unwrap returns ErrFieldCount.
func (e *FieldCountError) Unwrap() error {
	return ErrFieldCount
}

// OptionsError represents an invalid option configuration.
type OptionsError struct {
	Field   string
	Message string
}

func (e *OptionsError) Error() string {
	return "csv: invalid " + e.Field + ": " + e.Message
}
