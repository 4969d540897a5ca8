// Package parser implements the row grammar of delimited text.
//
// Grammar:
//
//	Row           = Field { Delimiter Field } [ Terminator ] ;
//	Field         = QuotedField | UnquotedField ;
//	QuotedField   = Quote { QuotedChar | EscapedQuote } Quote ;
//	EscapedQuote  = Quote Quote | Escape Quote ;
//	UnquotedField = { <any character except Delimiter and Terminator> } ;
//
// A quoted field may contain delimiters and raw line terminators. After its
// closing quote only a delimiter, a terminator or the end of input may follow.
package parser

import (
	"errors"
	"io"
	"strings"

	"github.com/shapestone/csvcodec/internal/tokenizer"
)

// Options configures the parser behavior.
type Options struct {
	// Delimiter separates fields. Default: ','
	Delimiter rune
	// Quote encloses quoted fields. Default: '"'
	Quote rune
	// Escape marks a literal quote inside a quoted field. When equal to Quote,
	// a literal quote is written as two quotes. Default: '"'
	Escape rune
	// SkipEmptyLines drops rows consisting of a single empty unquoted field.
	SkipEmptyLines bool
	// ReuseRecord makes Next return the same backing slice for every row.
	ReuseRecord bool
}

// DefaultOptions returns default parser options.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		Quote:     '"',
		Escape:    '"',
	}
}

// Position locates a character in the input.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Parser reads one row at a time from a Scanner.
// It holds no more than the row being read.
type Parser struct {
	scanner   *tokenizer.Scanner
	opts      Options
	row       int
	startLine int
	positions []Position
	record    []string
	field     strings.Builder
	err       error

	// terminated reports whether the last row ended with a line terminator.
	terminated bool
}

// NewParser creates a new parser for the given input string.
func NewParser(input string) *Parser {
	return NewParserWithOptions(input, DefaultOptions())
}

// NewParserWithOptions creates a new parser for the input string with custom options.
func NewParserWithOptions(input string, opts Options) *Parser {
	return NewParserFromScanner(tokenizer.NewScanner(input), opts)
}

// NewParserFromReader creates a parser that reads incrementally from r.
func NewParserFromReader(r io.Reader, opts Options) *Parser {
	return NewParserFromScanner(tokenizer.NewScannerFromReader(r), opts)
}

// NewParserFromScanner creates a parser driving an existing scanner.
func NewParserFromScanner(s *tokenizer.Scanner, opts Options) *Parser {
	return &Parser{
		scanner: s,
		opts:    opts,
	}
}

// Next returns the next row. It returns io.EOF when the input is exhausted.
// Errors are sticky: once Next fails, every later call returns the same error.
func (p *Parser) Next() ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	for {
		row, empty, err := p.parseRow()
		// A row cut short by a failing source is not returned.
		if ioErr := p.scanner.Err(); ioErr != nil && !p.terminated {
			var pe *ParseError
			if !errors.As(err, &pe) {
				err = ioErr
			}
		}
		if err != nil {
			p.err = err
			return nil, err
		}
		if row == nil {
			p.err = io.EOF
			return nil, io.EOF
		}
		if p.opts.ReuseRecord {
			p.record = row
		}
		if empty && p.opts.SkipEmptyLines {
			continue
		}
		return row, nil
	}
}

// Row returns the logical row number of the row most recently read (1-indexed).
// Rows dropped as empty lines are counted.
func (p *Parser) Row() int {
	return p.row
}

// StartLine returns the physical line where the most recent row started.
func (p *Parser) StartLine() int {
	return p.startLine
}

// Offset returns the number of characters consumed so far.
func (p *Parser) Offset() int {
	return p.scanner.Offset()
}

// FieldPos returns the start position of field i of the most recent row.
// The second result is false when the row has no such field.
func (p *Parser) FieldPos(i int) (Position, bool) {
	if i < 0 || i >= len(p.positions) {
		return Position{}, false
	}
	return p.positions[i], true
}

// parseRow parses a single row.
//
// A row only starts when at least one character is pending, so an empty
// input or a final terminator never produces an empty row. The second
// result reports a row made of one empty unquoted field.
func (p *Parser) parseRow() ([]string, bool, error) {
	p.terminated = false
	if p.scanner.AtEOF() {
		return nil, false, nil
	}
	p.row++
	p.startLine = p.scanner.Line()
	p.positions = p.positions[:0]

	var fields []string
	if p.opts.ReuseRecord {
		fields = p.record[:0]
	} else {
		fields = make([]string, 0, 8)
	}
	quoted := false
	for {
		p.positions = append(p.positions, p.position())

		if r, ok := p.scanner.Peek(); ok && r == p.opts.Quote {
			quoted = true
			value, err := p.parseQuotedField()
			if err != nil {
				return nil, false, err
			}
			fields = append(fields, value)

			end, err := p.afterClosingQuote()
			if err != nil {
				return nil, false, err
			}
			if end {
				return fields, false, nil
			}
			continue
		}

		value, end := p.parseUnquotedField()
		fields = append(fields, value)
		if end {
			empty := !quoted && len(fields) == 1 && value == ""
			return fields, empty, nil
		}
	}
}

// parseQuotedField parses a quoted field and returns its unescaped value.
// The scanner must be positioned on the opening quote.
func (p *Parser) parseQuotedField() (string, error) {
	p.scanner.Next() // opening quote
	p.field.Reset()

	for {
		r, ok := p.scanner.Next()
		if !ok {
			return "", &MalformedError{Row: p.row, Line: p.startLine, Err: ErrUnterminatedQuote}
		}

		switch r {
		case p.opts.Quote:
			if p.opts.Escape == p.opts.Quote {
				if n, ok := p.scanner.Peek(); ok && n == p.opts.Quote {
					p.scanner.Next()
					p.field.WriteRune(r)
					continue
				}
			}
			return p.field.String(), nil
		case p.opts.Escape:
			if n, ok := p.scanner.Peek(); ok && n == p.opts.Quote {
				p.scanner.Next()
				p.field.WriteRune(n)
				continue
			}
			p.field.WriteRune(r)
		default:
			p.field.WriteRune(r)
		}
	}
}

// afterClosingQuote consumes what follows a closing quote. It reports whether
// the row ended.
func (p *Parser) afterClosingQuote() (bool, error) {
	r, ok := p.scanner.Peek()
	if !ok {
		return true, nil
	}
	if r == p.opts.Delimiter {
		p.scanner.Next()
		return false, nil
	}
	if _, ok := p.scanner.ReadTerminator(); ok {
		p.terminated = true
		return true, nil
	}
	return false, &ParseError{
		Row:       p.row,
		StartLine: p.startLine,
		Line:      p.scanner.Line(),
		Column:    p.scanner.Column(),
		Char:      r,
		Err:       ErrUnexpectedChar,
	}
}

// parseUnquotedField parses an unquoted field. It consumes the delimiter or
// terminator that ends the field and reports whether the row ended.
func (p *Parser) parseUnquotedField() (string, bool) {
	p.field.Reset()

	for {
		r, ok := p.scanner.Peek()
		if !ok {
			return p.field.String(), true
		}
		if r == p.opts.Delimiter {
			p.scanner.Next()
			return p.field.String(), false
		}
		if _, ok := p.scanner.ReadTerminator(); ok {
			p.terminated = true
			return p.field.String(), true
		}
		p.scanner.Next()
		p.field.WriteRune(r)
	}
}

// position returns the position of the next character.
func (p *Parser) position() Position {
	return Position{
		Line:   p.scanner.Line(),
		Column: p.scanner.Column(),
		Offset: p.scanner.Offset(),
	}
}
