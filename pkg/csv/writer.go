package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/shapestone/csvcodec/internal/tokenizer"
)

// Writer writes rows of values as CSV.
//
// Terminators are placed between rows; a final terminator is written only
// when WriterOptions.OutputTrailingTerminator is set. Every write operation
// flushes the buffered output.
//
// A Writer is not safe for concurrent use. Errors from the underlying
// writer are returned unchanged and are sticky.
type Writer struct {
	w      *bufio.Writer
	opts   WriterOptions
	quoter fieldQuoter
	sb     strings.Builder

	started bool
	closed  bool
	err     error
}

// NewWriter returns a Writer that writes to w. Close flushes the Writer
// but does not close w.
func NewWriter(w io.Writer, opts WriterOptions) (*Writer, error) {
	opts = opts.normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Writer{
		w:      bufio.NewWriter(w),
		opts:   opts,
		quoter: newFieldQuoter(opts),
	}, nil
}

// WriteRow writes a single row.
// A nil value is written as the null marker; other values are formatted by
// their type (strings verbatim, numbers in decimal, time.Time in RFC 3339,
// fmt.Stringer through String).
func (w *Writer) WriteRow(row []any) error {
	if err := w.check(); err != nil {
		return err
	}
	w.preTerminator()
	w.writeNext(row)
	w.endTerminator()
	return w.Flush()
}

// WriteFields writes its arguments as a single row.
func (w *Writer) WriteFields(fields ...any) error {
	return w.WriteRow(fields)
}

// WriteRows writes rows, separating them with the line terminator.
// No terminator follows an empty row.
func (w *Writer) WriteRows(rows [][]any) error {
	return w.WriteRowSeq(slices.Values(rows))
}

// WriteRowSeq writes the rows produced by seq like WriteRows.
// It stops pulling rows after the first write error.
func (w *Writer) WriteRowSeq(seq iter.Seq[[]any]) error {
	if err := w.check(); err != nil {
		return err
	}
	w.preTerminator()
	first, prevEmpty := true, false
	for row := range seq {
		if !first && !prevEmpty {
			w.writeTerminator()
		}
		w.writeNext(row)
		if w.err != nil {
			return w.err
		}
		first, prevEmpty = false, len(row) == 0
	}
	w.endTerminator()
	return w.Flush()
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Error reports any error that has occurred during a previous write or flush.
func (w *Writer) Error() error {
	return w.err
}

// Close flushes the Writer. Later writes fail with ErrClosed.
// The underlying io.Writer is left open.
func (w *Writer) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	return w.Flush()
}

func (w *Writer) check() error {
	if w.closed {
		return ErrClosed
	}
	return w.err
}

// preTerminator writes the terminator that was held back after the previous
// row when trailing terminators are off.
func (w *Writer) preTerminator() {
	if !w.opts.OutputTrailingTerminator && w.started {
		w.writeTerminator()
	}
}

func (w *Writer) endTerminator() {
	if w.opts.OutputTrailingTerminator {
		w.writeTerminator()
	}
}

func (w *Writer) writeTerminator() {
	w.writeString(w.opts.LineTerminator)
}

func (w *Writer) writeNext(row []any) {
	if !w.started && w.opts.PrependBOM {
		w.writeRune(tokenizer.BOM)
	}

	w.sb.Reset()
	for i, v := range row {
		if i > 0 {
			w.sb.WriteRune(w.opts.Delimiter)
		}
		s, null := formatValue(v)
		if null {
			w.sb.WriteString(w.opts.NullMarker)
			continue
		}
		w.sb.WriteString(w.quoter.quoted(s))
	}
	w.writeString(w.sb.String())
	w.started = true
}

func (w *Writer) writeString(s string) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteString(s); err != nil {
		w.err = err
	}
}

func (w *Writer) writeRune(r rune) {
	if w.err != nil {
		return
	}
	if _, err := w.w.WriteRune(r); err != nil {
		w.err = err
	}
}

// Strings converts a row of strings to a row of values for the Writer.
func Strings(fields []string) []any {
	row := make([]any, len(fields))
	for i, f := range fields {
		row[i] = f
	}
	return row
}

// StringRows converts rows of strings to rows of values for the Writer.
func StringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = Strings(r)
	}
	return out
}

// WriteAll writes rows to w and flushes.
func WriteAll(w io.Writer, rows [][]any, opts WriterOptions) error {
	cw, err := NewWriter(w, opts)
	if err != nil {
		return err
	}
	return cw.WriteRows(rows)
}

// OpenFile opens the named file for writing, passes a Writer over it to fn,
// and closes the file however fn returns. The file is created if needed and
// truncated unless appendMode is set. A close error is joined to the
// returned error.
func OpenFile(path string, appendMode bool, opts WriterOptions, fn func(*Writer) error) (err error) {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	w, err := NewWriter(f, opts)
	if err != nil {
		return err
	}
	ferr := fn(w)
	if cerr := w.Close(); ferr == nil {
		return cerr
	}
	return ferr
}

// WriteFile writes rows to the named file.
func WriteFile(path string, rows [][]any, appendMode bool, opts WriterOptions) error {
	return OpenFile(path, appendMode, opts, func(w *Writer) error {
		return w.WriteRows(rows)
	})
}
