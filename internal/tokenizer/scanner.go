package tokenizer

import (
	"bufio"
	"io"
	"strings"

	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// charSource is the part of a shape-core stream the scanner uses.
type charSource interface {
	PeekChar() (rune, bool)
	NextChar() (rune, bool)
}

var _ charSource = tokenizer.Stream(nil)

// Scanner pulls characters from a shape-core stream, or a rune reader for
// io.Reader input, and tracks the physical position of the next unread
// character.
//
// The scanner knows nothing about quoting. It offers single-character
// lookahead (Peek), consumption (Next) and terminator recognition
// (ReadTerminator); the parser drives these to decide where a row ends.
type Scanner struct {
	stream charSource
	source *readerSource
	line   int
	column int
	offset int
}

// NewScanner creates a scanner over an in-memory string.
func NewScanner(input string) *Scanner {
	return newScanner(tokenizer.NewStream(input), nil)
}

// NewScannerFromReader creates a scanner that reads incrementally from r.
// Characters are decoded one at a time, so a multi-byte character split
// across reads stays whole. Invalid UTF-8 decodes to U+FFFD.
// Read errors other than io.EOF end the input and are reported by Err.
func NewScannerFromReader(r io.Reader) *Scanner {
	src := &readerSource{br: bufio.NewReader(r)}
	return newScanner(src, src)
}

func newScanner(stream charSource, src *readerSource) *Scanner {
	s := &Scanner{
		stream: stream,
		source: src,
		line:   1,
		column: 1,
	}
	if r, ok := stream.PeekChar(); ok && r == BOM {
		stream.NextChar()
	}
	return s
}

// Peek returns the next character without consuming it.
func (s *Scanner) Peek() (rune, bool) {
	return s.stream.PeekChar()
}

// Next consumes and returns the next character.
func (s *Scanner) Next() (rune, bool) {
	r, ok := s.stream.NextChar()
	if !ok {
		return 0, false
	}
	s.offset++

	// The LF of a CRLF pair closes the line, not the CR.
	if r == '\r' {
		if n, ok := s.stream.PeekChar(); ok && n == '\n' {
			s.column++
			return r, true
		}
	}
	if IsTerminator(r) {
		s.line++
		s.column = 1
	} else {
		s.column++
	}
	return r, true
}

// ReadTerminator consumes one line terminator at the current position and
// returns it. It returns false and consumes nothing when the next character
// does not start a terminator.
func (s *Scanner) ReadTerminator() (string, bool) {
	r, ok := s.Peek()
	if !ok || !IsTerminator(r) {
		return "", false
	}
	s.Next()
	if r == '\r' {
		if n, ok := s.Peek(); ok && n == '\n' {
			s.Next()
			return CRLF, true
		}
	}
	return string(r), true
}

// ReadLine returns the next physical line including its terminator.
// The last line is returned without a terminator when the input does not end
// with one. It returns false once the input is exhausted.
func (s *Scanner) ReadLine() (string, bool) {
	if s.AtEOF() {
		return "", false
	}
	var sb strings.Builder
	for {
		if t, ok := s.ReadTerminator(); ok {
			sb.WriteString(t)
			break
		}
		r, ok := s.Next()
		if !ok {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), true
}

// AtEOF reports whether no characters are left.
func (s *Scanner) AtEOF() bool {
	_, ok := s.Peek()
	return !ok
}

// Line returns the 1-based physical line of the next character.
func (s *Scanner) Line() int {
	return s.line
}

// Column returns the 1-based column of the next character within its line.
func (s *Scanner) Column() int {
	return s.column
}

// Offset returns the number of characters consumed so far, excluding a leading BOM.
func (s *Scanner) Offset() int {
	return s.offset
}

// Err returns the first read error of the underlying reader, if any.
func (s *Scanner) Err() error {
	if s.source == nil {
		return nil
	}
	return s.source.err
}

// readerSource decodes characters from a buffered reader with one character
// of lookahead. The first read failure ends the input and is kept in err.
type readerSource struct {
	br     *bufio.Reader
	next   rune
	peeked bool
	done   bool
	err    error
}

func (s *readerSource) PeekChar() (rune, bool) {
	if !s.peeked && !s.done {
		r, _, err := s.br.ReadRune()
		if err != nil {
			s.done = true
			if err != io.EOF {
				s.err = err
			}
			return 0, false
		}
		s.next, s.peeked = r, true
	}
	if !s.peeked {
		return 0, false
	}
	return s.next, true
}

func (s *readerSource) NextChar() (rune, bool) {
	r, ok := s.PeekChar()
	s.peeked = false
	return r, ok
}
