// Package csv reads and writes delimited text.
//
// # Document Type
//
// Document holds a whole CSV file in memory, with optional headers:
//
//	doc := csv.NewDocument().
//		SetHeaders([]string{"name", "age"}).
//		AddRecord([]string{"Alice", "30"}).
//		AddRecord([]string{"Bob", "25"})
//
// # Record Type
//
// Record is a single row with access by index or by header name. Records
// keep header order when marshalled to JSON or YAML:
//
//	record, _ := doc.GetRecord(0)
//	name, _ := record.Get(0)
//	age, _ := record.GetByName("age")
//	b, _ := json.Marshal(record) // {"name":"Alice","age":"30"}
package csv

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shapestone/shape-core/pkg/ast"
	"gopkg.in/yaml.v3"
)

// Document represents a CSV file with a fluent API for manipulation.
// All setter methods return *Document to enable method chaining.
type Document struct {
	headers []string
	records [][]string
}

// Record represents a single row in a CSV file.
// It provides type-safe access to field values by index or by header name.
type Record struct {
	fields  []string
	headers []string
}

// NewRecord creates a Record. headers may be nil.
func NewRecord(fields, headers []string) Record {
	return Record{fields: fields, headers: headers}
}

// NewDocument creates a new empty Document.
func NewDocument() *Document {
	return &Document{
		headers: []string{},
		records: make([][]string, 0),
	}
}

// ParseDocument parses a CSV string into a Document. All rows are records.
func ParseDocument(input string) (*Document, error) {
	return ReadDocument(strings.NewReader(input), false, DefaultReaderOptions())
}

// ParseDocumentWithHeader parses a CSV string into a Document whose headers
// come from the first row.
//
// Example:
//
//	doc, err := csv.ParseDocumentWithHeader("name,age\nAlice,30\nBob,25")
//	if err != nil {
//	    // handle error
//	}
//	rec, _ := doc.GetRecord(1)
//	name, _ := rec.GetByName("name") // "Bob"
func ParseDocumentWithHeader(input string) (*Document, error) {
	return ReadDocument(strings.NewReader(input), true, DefaultReaderOptions())
}

// ReadDocument reads r into a Document. With header set, the first row
// becomes the (deduplicated) headers.
func ReadDocument(r io.Reader, header bool, opts ReaderOptions) (*Document, error) {
	cr, err := NewReader(r, opts)
	if err != nil {
		return nil, err
	}

	doc := NewDocument()
	if !header {
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, err
		}
		doc.records = rows
		return doc, nil
	}

	hr := cr.WithHeader()
	records, err := hr.ReadAll()
	if err != nil {
		return nil, err
	}
	if h, err := hr.Header(); err == nil {
		doc.headers = h
	}
	for _, rec := range records {
		doc.records = append(doc.records, rec.fields)
	}
	return doc, nil
}

// SetHeaders sets the column headers for this CSV document.
// Headers are used by Record.GetByName() to access fields by name.
// Returns the Document for method chaining.
func (d *Document) SetHeaders(headers []string) *Document {
	d.headers = headers
	return d
}

// AddRecord adds a data record (row) to the document.
// Returns the Document for method chaining.
func (d *Document) AddRecord(fields []string) *Document {
	d.records = append(d.records, fields)
	return d
}

// Headers returns the column headers.
// Returns an empty slice if no headers have been set.
func (d *Document) Headers() []string {
	return d.headers
}

// Records returns all data records as Record objects.
func (d *Document) Records() []Record {
	records := make([]Record, len(d.records))
	for i, fields := range d.records {
		records[i] = Record{
			fields:  fields,
			headers: d.headers,
		}
	}
	return records
}

// RecordCount returns the number of data records in the document.
// This does not include the header row.
func (d *Document) RecordCount() int {
	return len(d.records)
}

// GetRecord returns the record at the specified index.
// Returns (Record, false) if the index is out of bounds.
// Index is 0-based (0 = first data record, not the header).
func (d *Document) GetRecord(index int) (Record, bool) {
	if index < 0 || index >= len(d.records) {
		return Record{}, false
	}

	return Record{
		fields:  d.records[index],
		headers: d.headers,
	}, true
}

// CSV renders the Document with the default writer options.
// This includes headers (if set) followed by all data records.
func (d *Document) CSV() (string, error) {
	return d.CSVWithOptions(DefaultWriterOptions())
}

// CSVWithOptions renders the Document with custom writer options.
func (d *Document) CSVWithOptions(opts WriterOptions) (string, error) {
	var sb strings.Builder
	w, err := NewWriter(&sb, opts)
	if err != nil {
		return "", err
	}

	rows := make([][]any, 0, len(d.records)+1)
	if len(d.headers) > 0 {
		rows = append(rows, Strings(d.headers))
	}
	rows = append(rows, StringRows(d.records)...)
	if len(rows) == 0 {
		return "", nil
	}
	if err := w.WriteRows(rows); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ============================================================================
// Record Methods (type-safe field access)
// ============================================================================

// Get gets the field value at the specified index.
// Returns (value, false) if the index is out of bounds.
// Index is 0-based.
func (r Record) Get(index int) (string, bool) {
	if index < 0 || index >= len(r.fields) {
		return "", false
	}
	return r.fields[index], true
}

// GetByName gets the field value by header name.
// Returns (value, false) if the header name is not found or if no headers are set.
func (r Record) GetByName(name string) (string, bool) {
	for i, header := range r.headers {
		if header == name {
			return r.Get(i)
		}
	}
	return "", false
}

// Fields returns all field values in the record.
// This returns a copy of the fields slice.
func (r Record) Fields() []string {
	fields := make([]string, len(r.fields))
	copy(fields, r.fields)
	return fields
}

// Headers returns the header names of the record, or nil.
func (r Record) Headers() []string {
	return r.headers
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.fields)
}

// All returns an iterator over header name and value pairs in header order.
func (r Record) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for i, h := range r.headers {
			if i >= len(r.fields) {
				return
			}
			if !yield(h, r.fields[i]) {
				return
			}
		}
	}
}

// Map returns the record as a map from header name to value.
func (r Record) Map() map[string]string {
	m := make(map[string]string, len(r.headers))
	for k, v := range r.All() {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes a record with headers as an object in header order,
// and one without as an array of strings.
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.headers) == 0 {
		return json.Marshal(r.Fields())
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for k, v := range r.All() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes a record with headers as a mapping in header order,
// and one without as a sequence.
func (r Record) MarshalYAML() (any, error) {
	str := func(s string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	}
	if len(r.headers) == 0 {
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, f := range r.fields {
			node.Content = append(node.Content, str(f))
		}
		return node, nil
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range r.All() {
		node.Content = append(node.Content, str(k), str(v))
	}
	return node, nil
}

// ============================================================================
// AST Conversion (for integration with AST-based APIs)
// ============================================================================

// ToAST converts the Document to an AST ArrayDataNode.
// Headers, if set, become the first row.
func (d *Document) ToAST() (*ast.ArrayDataNode, error) {
	rows := make([][]string, 0, len(d.records)+1)
	if len(d.headers) > 0 {
		rows = append(rows, d.headers)
	}
	rows = append(rows, d.records...)
	return RecordsToNode(rows), nil
}

// FromAST creates a Document from an AST ArrayDataNode.
// All rows become records.
func FromAST(node ast.SchemaNode) (*Document, error) {
	rows, err := NodeToRecords(node)
	if err != nil {
		return nil, err
	}
	doc := NewDocument()
	doc.records = rows
	return doc, nil
}

// errNodeType reports an AST node of an unexpected type.
func errNodeType(what string, want string, got any) error {
	return fmt.Errorf("expected %s to be %s, got %T", what, want, got)
}
