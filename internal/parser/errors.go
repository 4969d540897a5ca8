package parser

import (
	"errors"
	"fmt"
)

// Errors wrapped by ParseError and MalformedError.
var (
	// ErrUnexpectedChar indicates a character other than a delimiter or line
	// terminator right after a closing quote.
	ErrUnexpectedChar = errors.New("unexpected character after closing quote")

	// ErrUnterminatedQuote indicates the input ended inside a quoted field.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")

	// ErrDuplicateHeader indicates a header name that appears more than once.
	ErrDuplicateHeader = errors.New("duplicate header")

	// ErrHeaderRename indicates that renaming a duplicate header produced a
	// name that is already taken.
	ErrHeaderRename = errors.New("renamed header collides with another header")
)

// ParseError is a grammar violation at a single position.
type ParseError struct {
	// Row is the logical row being read (1-indexed). Quoted line breaks do not start a new row.
	Row int
	// StartLine is the physical line where the row started (1-indexed).
	StartLine int
	// Line is the physical line of the offending character (1-indexed).
	Line int
	// Column is the column of the offending character within Line (1-indexed, in characters).
	Column int
	// Char is the offending character.
	Char rune
	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message with position information.
func (e *ParseError) Error() string {
	if e.StartLine == e.Line {
		return fmt.Sprintf("parse error on line %d, column %d: %v: %q", e.Line, e.Column, e.Err, e.Char)
	}
	return fmt.Sprintf("parse error on line %d (started line %d), column %d: %v: %q",
		e.Line, e.StartLine, e.Column, e.Err, e.Char)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedError reports a document that cannot be read as a whole:
// an unterminated quoted field or an unusable header row.
type MalformedError struct {
	// Row is the logical row (1-indexed).
	Row int
	// Line is the physical line where the row started (1-indexed).
	Line int
	// Detail names the offending value, if any.
	Detail string
	// Err is the underlying error.
	Err error
}

func (e *MalformedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("malformed csv on line %d: %v: %q", e.Line, e.Err, e.Detail)
	}
	return fmt.Sprintf("malformed csv on line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}
