package csv

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/shapestone/csvcodec/internal/parser"
	"github.com/shapestone/csvcodec/internal/tokenizer"
)

// ExcessFieldsPolicy decides what happens to a row with more fields than expected.
type ExcessFieldsPolicy int

const (
	// ExcessError fails the read with a *FieldCountError (default).
	ExcessError ExcessFieldsPolicy = iota
	// ExcessTrim keeps the first expected fields and drops the rest.
	ExcessTrim
	// ExcessIgnore drops the row.
	ExcessIgnore
)

// String returns the string representation of ExcessFieldsPolicy.
func (p ExcessFieldsPolicy) String() string {
	switch p {
	case ExcessError:
		return "error"
	case ExcessTrim:
		return "trim"
	case ExcessIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("ExcessFieldsPolicy(%d)", p)
	}
}

// ParseExcessFieldsPolicy parses the name returned by ExcessFieldsPolicy.String.
// Matching ignores case, and '_' is accepted in place of '-'.
func ParseExcessFieldsPolicy(s string) (ExcessFieldsPolicy, error) {
	switch policyName(s) {
	case "error":
		return ExcessError, nil
	case "trim":
		return ExcessTrim, nil
	case "ignore":
		return ExcessIgnore, nil
	}
	return 0, &OptionsError{Field: "ExcessFields", Message: fmt.Sprintf("unknown policy %q", s)}
}

// InsufficientFieldsPolicy decides what happens to a row with fewer fields than expected.
type InsufficientFieldsPolicy int

const (
	// InsufficientError fails the read with a *FieldCountError (default).
	InsufficientError InsufficientFieldsPolicy = iota
	// InsufficientEmptyString pads the row with empty fields.
	InsufficientEmptyString
	// InsufficientIgnore drops the row.
	InsufficientIgnore
)

// String returns the string representation of InsufficientFieldsPolicy.
func (p InsufficientFieldsPolicy) String() string {
	switch p {
	case InsufficientError:
		return "error"
	case InsufficientEmptyString:
		return "empty-string"
	case InsufficientIgnore:
		return "ignore"
	default:
		return fmt.Sprintf("InsufficientFieldsPolicy(%d)", p)
	}
}

// ParseInsufficientFieldsPolicy parses the name returned by InsufficientFieldsPolicy.String.
func ParseInsufficientFieldsPolicy(s string) (InsufficientFieldsPolicy, error) {
	switch policyName(s) {
	case "error":
		return InsufficientError, nil
	case "empty-string":
		return InsufficientEmptyString, nil
	case "ignore":
		return InsufficientIgnore, nil
	}
	return 0, &OptionsError{Field: "InsufficientFields", Message: fmt.Sprintf("unknown policy %q", s)}
}

// QuoteMode decides which fields the writer encloses in quotes.
type QuoteMode int

const (
	// QuoteWhenNeeded quotes fields containing the delimiter, the quote, CR or LF (default).
	QuoteWhenNeeded QuoteMode = iota
	// QuoteAlways quotes every non-null field.
	QuoteAlways
	// QuoteNonNumeric quotes every non-null field that is not made of ASCII
	// digits with at most one '.'.
	QuoteNonNumeric
)

// String returns the string representation of QuoteMode.
func (m QuoteMode) String() string {
	switch m {
	case QuoteWhenNeeded:
		return "when-needed"
	case QuoteAlways:
		return "always"
	case QuoteNonNumeric:
		return "non-numeric"
	default:
		return fmt.Sprintf("QuoteMode(%d)", m)
	}
}

// ParseQuoteMode parses the name returned by QuoteMode.String.
func ParseQuoteMode(s string) (QuoteMode, error) {
	switch policyName(s) {
	case "when-needed", "canonical":
		return QuoteWhenNeeded, nil
	case "always", "all":
		return QuoteAlways, nil
	case "non-numeric":
		return QuoteNonNumeric, nil
	}
	return 0, &OptionsError{Field: "QuoteMode", Message: fmt.Sprintf("unknown quote mode %q", s)}
}

func policyName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
}

// ReaderOptions configures CSV reading behavior.
type ReaderOptions struct {
	// Delimiter separates fields.
	// Default: ','
	Delimiter rune

	// Quote encloses fields that contain delimiters, quotes or line breaks.
	// Default: '"'
	Quote rune

	// Escape marks a literal quote inside a quoted field. When it equals Quote
	// (or is zero), a literal quote is written as two quotes.
	// Default: Quote
	Escape rune

	// SkipEmptyLines drops lines that contain nothing at all.
	// Default: false
	SkipEmptyLines bool

	// ExcessFields applies to rows with more fields than expected.
	// Default: ExcessError
	ExcessFields ExcessFieldsPolicy

	// InsufficientFields applies to rows with fewer fields than expected.
	// Default: InsufficientError
	InsufficientFields InsufficientFieldsPolicy

	// SkipMismatchedRows drops every row whose field count differs from the
	// expected count, overriding ExcessFields and InsufficientFields.
	// Default: false
	SkipMismatchedRows bool

	// AutoRenameDuplicateHeaders renames the k-th occurrence of header h to
	// h_k instead of failing.
	// Default: false
	AutoRenameDuplicateHeaders bool

	// ExpectedFieldCount, if positive, is the field count every row must have.
	// If 0, the first row sets it. When reading with a header, the header
	// length is used instead.
	// Default: 0
	ExpectedFieldCount int

	// ReuseRecord lets Read return a slice that shares its backing array with
	// the previous row, saving one allocation per row. ReadAll and Stream
	// still return independent rows.
	// Default: false
	ReuseRecord bool

	// Logger receives debug messages about dropped rows. Nil disables logging.
	Logger *log.Logger
}

// DefaultReaderOptions returns the default reader configuration.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:          ',',
		Quote:              '"',
		Escape:             '"',
		ExcessFields:       ExcessError,
		InsufficientFields: InsufficientError,
	}
}

// normalized fills zero characters with their defaults.
func (o ReaderOptions) normalized() ReaderOptions {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.Escape == 0 {
		o.Escape = o.Quote
	}
	return o
}

func (o ReaderOptions) parserOptions() parser.Options {
	return parser.Options{
		Delimiter:      o.Delimiter,
		Quote:          o.Quote,
		Escape:         o.Escape,
		SkipEmptyLines: o.SkipEmptyLines,
		ReuseRecord:    o.ReuseRecord,
	}
}

// Validate checks if the options are valid.
// Zero characters are treated as their defaults.
func (o ReaderOptions) Validate() error {
	o = o.normalized()
	if err := validChar("Delimiter", o.Delimiter); err != nil {
		return err
	}
	if err := validChar("Quote", o.Quote); err != nil {
		return err
	}
	if err := validChar("Escape", o.Escape); err != nil {
		return err
	}
	if o.Delimiter == o.Quote {
		return &OptionsError{Field: "Quote", Message: "quote character same as delimiter"}
	}
	if o.Delimiter == o.Escape {
		return &OptionsError{Field: "Escape", Message: "escape character same as delimiter"}
	}
	if o.ExcessFields < ExcessError || o.ExcessFields > ExcessIgnore {
		return &OptionsError{Field: "ExcessFields", Message: o.ExcessFields.String()}
	}
	if o.InsufficientFields < InsufficientError || o.InsufficientFields > InsufficientIgnore {
		return &OptionsError{Field: "InsufficientFields", Message: o.InsufficientFields.String()}
	}
	if o.ExpectedFieldCount < 0 {
		return &OptionsError{Field: "ExpectedFieldCount", Message: "must not be negative"}
	}
	return nil
}

// WriterOptions configures CSV writing behavior.
type WriterOptions struct {
	// Delimiter separates fields.
	// Default: ','
	Delimiter rune

	// Quote encloses fields. A quote inside a field is always written twice.
	// Default: '"'
	Quote rune

	// NullMarker is written for nil values, never quoted.
	// Default: ""
	NullMarker string

	// LineTerminator ends each row.
	// Default: "\r\n"
	LineTerminator string

	// OutputTrailingTerminator writes a terminator after the last row.
	// Without it, terminators only separate rows.
	// Default: true
	OutputTrailingTerminator bool

	// PrependBOM writes U+FEFF before the first character.
	// Default: false
	PrependBOM bool

	// QuoteMode decides which fields are quoted.
	// Default: QuoteWhenNeeded
	QuoteMode QuoteMode
}

// DefaultWriterOptions returns the default writer configuration.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Delimiter:                ',',
		Quote:                    '"',
		LineTerminator:           tokenizer.CRLF,
		OutputTrailingTerminator: true,
		QuoteMode:                QuoteWhenNeeded,
	}
}

// normalized fills zero characters and an empty terminator with their defaults.
func (o WriterOptions) normalized() WriterOptions {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	if o.LineTerminator == "" {
		o.LineTerminator = tokenizer.CRLF
	}
	return o
}

// Validate checks if the writer options are valid.
func (o WriterOptions) Validate() error {
	o = o.normalized()
	if err := validChar("Delimiter", o.Delimiter); err != nil {
		return err
	}
	if err := validChar("Quote", o.Quote); err != nil {
		return err
	}
	if o.Delimiter == o.Quote {
		return &OptionsError{Field: "Quote", Message: "quote character same as delimiter"}
	}
	if !utf8.ValidString(o.LineTerminator) {
		return &OptionsError{Field: "LineTerminator", Message: "invalid UTF-8"}
	}
	if o.QuoteMode < QuoteWhenNeeded || o.QuoteMode > QuoteNonNumeric {
		return &OptionsError{Field: "QuoteMode", Message: o.QuoteMode.String()}
	}
	return nil
}

// validChar reports whether r can be used as a delimiter, quote or escape character.
func validChar(field string, r rune) error {
	switch {
	case !utf8.ValidRune(r) || r == utf8.RuneError:
		return &OptionsError{Field: field, Message: "invalid character"}
	case tokenizer.IsTerminator(r):
		return &OptionsError{Field: field, Message: "line terminator not allowed"}
	case r == tokenizer.BOM:
		return &OptionsError{Field: field, Message: "byte order mark not allowed"}
	}
	return nil
}
