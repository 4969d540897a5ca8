// Package csv reads and writes delimited text: rows of optionally quoted
// fields with configurable delimiter, quote and escape characters.
//
// Six line terminators are recognized on input (CRLF, LF, CR, U+2028,
// U+2029 and U+0085), a leading byte order mark is dropped, and quoted fields
// may span lines. Rows whose field count differs from the first row (or the
// header) are handled by ReaderOptions policies.
//
// # Thread Safety
//
// Package-level functions are safe for concurrent use; each call has its own
// reader or writer. A Reader, HeaderReader, Scanner or Writer must be used by
// one goroutine at a time.
//
// # Reading
//
//	r, err := csv.NewReader(file, csv.DefaultReaderOptions())
//	if err != nil {
//	    // handle error
//	}
//	for row, err := range r.Rows() {
//	    if err != nil {
//	        // handle error
//	    }
//	    fmt.Println(row)
//	}
//
// With a header row, records are keyed by header name:
//
//	records, err := csv.ReadAllWithHeader("name,age\nAlice,30", csv.DefaultReaderOptions())
//	name, _ := records[0].GetByName("name")
//
// # Writing
//
//	err := csv.WriteAll(os.Stdout, [][]any{{"a", 1}, {"b", nil}}, csv.DefaultWriterOptions())
//
// # AST
//
// Parse and ParseReader return the rows as a shape-core AST:
//
//	node, err := csv.Parse("name,age\nAlice,30\nBob,25")
//	arrayNode := node.(*ast.ArrayDataNode)
//	records := arrayNode.Elements()
//	// records[0] is the header row
package csv

import (
	"io"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Parse parses CSV format into an AST from a string with the default options.
//
// Returns an ast.ArrayDataNode representing the parsed CSV:
//   - *ast.ArrayDataNode for the file (array of records)
//   - Each record is an *ast.ArrayDataNode of fields
//   - Each field is an *ast.LiteralNode containing a string value
//
// For parsing large files or streaming data, use ParseReader instead.
func Parse(input string) (ast.SchemaNode, error) {
	return ParseWithOptions(input, DefaultReaderOptions())
}

// ParseReader parses CSV format into an AST from an io.Reader.
//
// The reader is consumed incrementally; only the AST itself grows with the
// input. To process rows without building an AST, use NewReader.
//
// Example parsing from a file:
//
//	file, err := os.Open("data.csv")
//	if err != nil {
//	    // handle error
//	}
//	defer file.Close()
//
//	node, err := csv.ParseReader(file)
func ParseReader(reader io.Reader) (ast.SchemaNode, error) {
	return ParseReaderWithOptions(reader, DefaultReaderOptions())
}

// Format returns the format identifier for this parser.
// Returns "CSV" to identify this as the CSV data format parser.
func Format() string {
	return "CSV"
}

// Validate checks if the input string is valid CSV with the default options.
//
// Returns nil if the input is valid CSV, or the first error a Reader would
// return:
//
//	if err := csv.Validate(input); err != nil {
//	    fmt.Println("Invalid CSV:", err)
//	}
func Validate(input string) error {
	return ValidateWithOptions(input, DefaultReaderOptions())
}

// ValidateWithOptions checks if the input string is valid CSV with custom options.
// Field-count policies apply, so the default options reject ragged rows.
//
// Example:
//
//	opts := csv.DefaultReaderOptions()
//	opts.Delimiter = ';'
//	err := csv.ValidateWithOptions("a;b;c", opts)
func ValidateWithOptions(input string, opts ReaderOptions) error {
	r, err := NewStringReader(input, opts)
	if err != nil {
		return err
	}
	return drain(r)
}

// ValidateReader checks if the input from an io.Reader is valid CSV.
// Rows are read and discarded one at a time.
func ValidateReader(reader io.Reader) error {
	return ValidateReaderWithOptions(reader, DefaultReaderOptions())
}

// ValidateReaderWithOptions checks an io.Reader with custom options.
func ValidateReaderWithOptions(reader io.Reader, opts ReaderOptions) error {
	r, err := NewReader(reader, opts)
	if err != nil {
		return err
	}
	return drain(r)
}

func drain(r *Reader) error {
	for _, err := range r.Rows() {
		if err != nil {
			return err
		}
	}
	return nil
}
