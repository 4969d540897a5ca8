package csv

import (
	"io"
)

// Scanner provides a streaming interface for reading CSV records one at a time.
// Records are read from the underlying reader as Scan is called, so memory use
// does not grow with the input.
//
// Example usage:
//
//	file, _ := os.Open("data.csv")
//	defer file.Close()
//
//	scanner := csv.NewScanner(file).SetHasHeaders(true)
//	for scanner.Scan() {
//	    record := scanner.Record()
//	    name, _ := record.GetByName("name")
//	    fmt.Println(name)
//	}
//	if err := scanner.Err(); err != nil {
//	    // handle error
//	}
type Scanner struct {
	reader      io.Reader
	opts        ReaderOptions
	hasHeaders  bool
	reuseRecord bool

	rows    *Reader
	headers []string
	current []string
	err     error
	done    bool
}

// NewScanner creates a new Scanner that reads CSV from the given io.Reader
// with the default options. By default, the scanner assumes no headers.
// Use SetHasHeaders(true) to treat the first row as headers.
func NewScanner(reader io.Reader) *Scanner {
	return &Scanner{
		reader: reader,
		opts:   DefaultReaderOptions(),
	}
}

// SetHasHeaders sets whether the first row should be treated as headers.
// If true, the first row will be used as column names for GetByName() access.
// It has no effect after the first call to Scan.
// Returns the Scanner for method chaining.
func (s *Scanner) SetHasHeaders(hasHeaders bool) *Scanner {
	s.hasHeaders = hasHeaders
	return s
}

// SetOptions sets the reader options. It has no effect after the first call
// to Scan. Returns the Scanner for method chaining.
func (s *Scanner) SetOptions(opts ReaderOptions) *Scanner {
	s.opts = opts
	return s
}

// SetReuseRecord sets whether successive Records may share the same fields
// slice, so that scanning does not allocate a new slice per row. Copy the
// fields of a reused Record before the next Scan if you need to keep them.
// It has no effect after the first call to Scan.
// Returns the Scanner for method chaining.
func (s *Scanner) SetReuseRecord(reuse bool) *Scanner {
	s.reuseRecord = reuse
	return s
}

// Scan advances the scanner to the next record.
// It returns false when there are no more records or an error occurs.
// After Scan returns false, the Err method will return any error that occurred.
func (s *Scanner) Scan() bool {
	if s.done {
		return false
	}
	if s.rows == nil && !s.start() {
		return false
	}

	row, err := s.rows.Read()
	if err != nil {
		s.stop(err)
		return false
	}
	s.current = row
	return true
}

// start creates the underlying Reader and reads the header row.
func (s *Scanner) start() bool {
	opts := s.opts
	opts.ReuseRecord = s.reuseRecord
	r, err := NewReader(s.reader, opts)
	if err != nil {
		s.stop(err)
		return false
	}
	s.rows = r
	if s.hasHeaders {
		h, err := r.WithHeader().Header()
		if err != nil {
			s.stop(err)
			return false
		}
		s.headers = h
	}
	return true
}

func (s *Scanner) stop(err error) {
	s.done = true
	s.current = nil
	if err != io.EOF {
		s.err = err
	}
}

// Record returns the current record.
// This should only be called after Scan() returns true.
func (s *Scanner) Record() Record {
	if s.current == nil {
		return Record{fields: []string{}, headers: s.headers}
	}
	return Record{
		fields:  s.current,
		headers: s.headers,
	}
}

// Err returns the error, if any, that was encountered during scanning.
// It returns nil if no error occurred or at EOF.
func (s *Scanner) Err() error {
	return s.err
}

// Headers returns the column headers if SetHasHeaders(true) was called.
// Returns nil if no headers were read.
// This is available after the first call to Scan().
func (s *Scanner) Headers() []string {
	return s.headers
}

// Row returns the logical row number of the current record.
func (s *Scanner) Row() int {
	if s.rows == nil {
		return 0
	}
	return s.rows.Row()
}
