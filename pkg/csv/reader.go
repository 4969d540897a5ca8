package csv

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"

	"github.com/shapestone/csvcodec/internal/parser"
)

// Reader reads rows from a CSV source one at a time.
//
// Only the row being read is held in memory. A Reader is single-pass and is
// not safe for concurrent use.
type Reader struct {
	p    *parser.Parser
	opts ReaderOptions
	rec  *reconciler
	last []string
	err  error
}

// NewReader creates a Reader that reads incrementally from r.
// It returns an *OptionsError if opts are invalid.
func NewReader(r io.Reader, opts ReaderOptions) (*Reader, error) {
	opts = opts.normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newReader(parser.NewParserFromReader(r, opts.parserOptions()), opts), nil
}

// NewStringReader creates a Reader over an in-memory string.
func NewStringReader(s string, opts ReaderOptions) (*Reader, error) {
	opts = opts.normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newReader(parser.NewParserWithOptions(s, opts.parserOptions()), opts), nil
}

func newReader(p *parser.Parser, opts ReaderOptions) *Reader {
	return &Reader{
		p:    p,
		opts: opts,
		rec:  newReconciler(opts),
	}
}

// Read returns the next reconciled row. Rows dropped by a policy are skipped.
// It returns io.EOF at the end of input. Errors are sticky.
func (r *Reader) Read() ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		fields, err := r.p.Next()
		if err != nil {
			r.err = err
			return nil, err
		}
		row, keep, err := r.rec.reconcile(fields, r.p.Row())
		if err != nil {
			r.err = err
			return nil, err
		}
		if keep {
			r.last = row
			return row, nil
		}
	}
}

// Rows returns an iterator over the remaining rows. Iteration stops after the
// first error, which is yielded with a nil row.
//
//	for row, err := range r.Rows() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(row)
//	}
func (r *Reader) Rows() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for {
			row, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll reads all remaining rows.
// A successful call returns err == nil, not err == io.EOF.
func (r *Reader) ReadAll() ([][]string, error) {
	rows := [][]string{}
	for row, err := range r.Rows() {
		if err != nil {
			return nil, err
		}
		rows = append(rows, r.detach(row))
	}
	return rows, nil
}

// detach copies row when it shares storage with later rows.
func (r *Reader) detach(row []string) []string {
	if r.opts.ReuseRecord {
		return slices.Clone(row)
	}
	return row
}

// Row returns the logical row number of the row most recently returned by Read.
// Skipped and dropped rows are counted.
func (r *Reader) Row() int {
	return r.p.Row()
}

// FieldPos returns the line and column of the start of the field with the
// given index in the row most recently returned by Read. Lines and columns
// are 1-indexed; columns count characters. Fields added by padding report the
// position of the last field read.
//
// If called with an out of bounds index, it panics.
func (r *Reader) FieldPos(field int) (line, column int) {
	if field < 0 || field >= len(r.last) {
		panic("out of range index passed to FieldPos")
	}
	pos := r.fieldPosition(field)
	return pos.Line, pos.Column
}

func (r *Reader) fieldPosition(field int) parser.Position {
	pos, ok := r.p.FieldPos(field)
	for i := field - 1; !ok && i >= 0; i-- {
		pos, ok = r.p.FieldPos(i)
	}
	return pos
}

// InputOffset returns the number of characters consumed so far, excluding a
// leading byte order mark.
func (r *Reader) InputOffset() int64 {
	return int64(r.p.Offset())
}

// WithHeader returns a HeaderReader that takes its field names from the next row.
func (r *Reader) WithHeader() *HeaderReader {
	return &HeaderReader{r: r}
}

// HeaderReader reads rows as Records keyed by a header row.
type HeaderReader struct {
	r      *Reader
	header []string
	done   bool
	err    error
}

// Header reads and returns the deduplicated header, reading it on first use.
// It returns io.EOF when the input holds no rows.
func (h *HeaderReader) Header() ([]string, error) {
	if !h.done {
		h.done = true
		h.err = h.readHeader()
	}
	if h.err != nil {
		return nil, h.err
	}
	return h.header, nil
}

func (h *HeaderReader) readHeader() error {
	p := h.r.p
	fields, err := p.Next()
	if err != nil {
		return err
	}
	header, err := dedupHeader(fields, h.r.opts.AutoRenameDuplicateHeaders, p.Row(), p.StartLine())
	if err != nil {
		return err
	}
	h.header = header
	h.r.rec.expected = len(header)
	return nil
}

// Read returns the next data row as a Record. It returns io.EOF at the end of input.
func (h *HeaderReader) Read() (Record, error) {
	header, err := h.Header()
	if err != nil {
		return Record{}, err
	}
	fields, err := h.r.Read()
	if err != nil {
		return Record{}, err
	}
	return Record{fields: fields, headers: header}, nil
}

// Records returns an iterator over the remaining Records. Iteration stops
// after the first error.
func (h *HeaderReader) Records() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for {
			rec, err := h.Read()
			if err == io.EOF {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// ReadAll reads all remaining Records.
func (h *HeaderReader) ReadAll() ([]Record, error) {
	records := []Record{}
	for rec, err := range h.Records() {
		if err != nil {
			return nil, err
		}
		rec.fields = h.r.detach(rec.fields)
		records = append(records, rec)
	}
	return records, nil
}

// Open opens the named file, passes a Reader over it to fn, and closes the
// file however fn returns. A close error is joined to the returned error.
//
//	err := csv.Open("data.csv", csv.DefaultReaderOptions(), func(r *csv.Reader) error {
//	    for row, err := range r.Rows() {
//	        if err != nil {
//	            return err
//	        }
//	        fmt.Println(row)
//	    }
//	    return nil
//	})
func Open(path string, opts ReaderOptions, fn func(*Reader) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	r, err := NewReader(f, opts)
	if err != nil {
		return err
	}
	return fn(r)
}

// ReadAll reads all rows of data.
func ReadAll(data string, opts ReaderOptions) ([][]string, error) {
	r, err := NewStringReader(data, opts)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

// ReadAllFrom reads all rows from r.
func ReadAllFrom(r io.Reader, opts ReaderOptions) ([][]string, error) {
	cr, err := NewReader(r, opts)
	if err != nil {
		return nil, err
	}
	return cr.ReadAll()
}

// ReadFile reads all rows of the named file.
func ReadFile(path string, opts ReaderOptions) ([][]string, error) {
	var rows [][]string
	err := Open(path, opts, func(r *Reader) error {
		var err error
		rows, err = r.ReadAll()
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReadAllWithHeader reads data using its first row as the header.
func ReadAllWithHeader(data string, opts ReaderOptions) ([]Record, error) {
	r, err := NewStringReader(data, opts)
	if err != nil {
		return nil, err
	}
	return r.WithHeader().ReadAll()
}

// ReadAllWithHeaderFrom reads r using its first row as the header.
func ReadAllWithHeaderFrom(r io.Reader, opts ReaderOptions) ([]Record, error) {
	cr, err := NewReader(r, opts)
	if err != nil {
		return nil, err
	}
	return cr.WithHeader().ReadAll()
}

// ReadFileWithHeader reads the named file using its first row as the header.
func ReadFileWithHeader(path string, opts ReaderOptions) ([]Record, error) {
	var records []Record
	err := Open(path, opts, func(r *Reader) error {
		var err error
		records, err = r.WithHeader().ReadAll()
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
