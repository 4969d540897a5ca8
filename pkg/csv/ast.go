package csv

import (
	"fmt"
	"io"

	"github.com/shapestone/shape-core/pkg/ast"

	"github.com/shapestone/csvcodec/internal/parser"
)

// ParseWithOptions parses CSV into an AST from a string with custom options.
//
// The result is an *ast.ArrayDataNode of rows; each row is an
// *ast.ArrayDataNode of *ast.LiteralNode string fields. Every node carries
// the line, column and character offset where it starts.
//
// Example:
//
//	opts := csv.DefaultReaderOptions()
//	opts.Delimiter = '\t'
//	node, err := csv.ParseWithOptions("name\tage\nAlice\t30", opts)
func ParseWithOptions(input string, opts ReaderOptions) (ast.SchemaNode, error) {
	r, err := NewStringReader(input, opts)
	if err != nil {
		return nil, err
	}
	return buildAST(r)
}

// ParseReaderWithOptions parses CSV into an AST from an io.Reader with custom options.
//
// Example:
//
//	opts := csv.DefaultReaderOptions()
//	opts.SkipEmptyLines = true
//	node, err := csv.ParseReaderWithOptions(file, opts)
func ParseReaderWithOptions(reader io.Reader, opts ReaderOptions) (ast.SchemaNode, error) {
	r, err := NewReader(reader, opts)
	if err != nil {
		return nil, err
	}
	return buildAST(r)
}

func buildAST(r *Reader) (ast.SchemaNode, error) {
	rows := []ast.SchemaNode{}
	for row, err := range r.Rows() {
		if err != nil {
			return nil, err
		}
		fields := make([]ast.SchemaNode, len(row))
		for i, f := range row {
			fields[i] = ast.NewLiteralNode(f, astPosition(r.fieldPosition(i)))
		}
		rows = append(rows, ast.NewArrayDataNode(fields, astPosition(r.fieldPosition(0))))
	}
	return ast.NewArrayDataNode(rows, ast.NewPosition(0, 1, 1)), nil
}

func astPosition(p parser.Position) ast.Position {
	return ast.NewPosition(p.Offset, p.Line, p.Column)
}

// NodeToRecords converts an AST produced by Parse (or built by RecordsToNode)
// back to rows of strings. A nil literal value becomes an empty field.
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\n")
//	records, _ := csv.NodeToRecords(node)
//	// records is [][]string{{"name","age"}, {"Alice","30"}}
func NodeToRecords(node ast.SchemaNode) ([][]string, error) {
	arrayNode, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, errNodeType("document", "*ast.ArrayDataNode", node)
	}

	records := make([][]string, 0, arrayNode.Len())
	for i, elem := range arrayNode.Elements() {
		recordNode, ok := elem.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("record %d: %w", i, errNodeType("record", "*ast.ArrayDataNode", elem))
		}

		fields := make([]string, 0, recordNode.Len())
		for _, fieldNode := range recordNode.Elements() {
			literalNode, ok := fieldNode.(*ast.LiteralNode)
			if !ok {
				return nil, fmt.Errorf("record %d: %w", i, errNodeType("field", "*ast.LiteralNode", fieldNode))
			}
			fields = append(fields, literalString(literalNode.Value()))
		}
		records = append(records, fields)
	}
	return records, nil
}

func literalString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprintf("%v", v)
}

// RecordsToNode converts rows of strings to an AST with zero positions.
//
// Example:
//
//	node := csv.RecordsToNode([][]string{
//	    {"name", "age"},
//	    {"Alice", "30"},
//	})
func RecordsToNode(records [][]string) *ast.ArrayDataNode {
	pos := ast.ZeroPosition()
	rows := make([]ast.SchemaNode, len(records))
	for i, record := range records {
		fields := make([]ast.SchemaNode, len(record))
		for j, f := range record {
			fields[j] = ast.NewLiteralNode(f, pos)
		}
		rows[i] = ast.NewArrayDataNode(fields, pos)
	}
	return ast.NewArrayDataNode(rows, pos)
}
