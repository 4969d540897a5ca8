package csv

import (
	"bytes"
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Render converts an AST node to CSV bytes with the default writer options.
//
// The node should be the result of Parse() or ParseReader(), or have the same
// shape: an *ast.ArrayDataNode of rows, each an *ast.ArrayDataNode of
// *ast.LiteralNode fields. A nil literal value is written as the null marker.
//
// Example:
//
//	node, _ := csv.Parse("name,age\nAlice,30\nBob,25\n")
//	bytes, _ := csv.Render(node)
//	// bytes: name,age\r\nAlice,30\r\nBob,25\r\n
func Render(node ast.SchemaNode) ([]byte, error) {
	return RenderWithOptions(node, DefaultWriterOptions())
}

// RenderWithOptions converts an AST node to CSV bytes with custom options.
//
// Example:
//
//	opts := csv.DefaultWriterOptions()
//	opts.Delimiter = '\t'
//	opts.LineTerminator = "\n"
//	bytes, err := csv.RenderWithOptions(node, opts)
func RenderWithOptions(node ast.SchemaNode, opts WriterOptions) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return []byte{}, nil
	}

	arrayNode, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, fmt.Errorf("unsupported node type for CSV rendering: %T", node)
	}
	elements := arrayNode.Elements()
	if len(elements) == 0 {
		return []byte{}, nil
	}

	rows := make([][]any, len(elements))
	for i, elem := range elements {
		row, err := renderRow(elem)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rows[i] = row
	}
	if err := w.WriteRows(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderRow converts a record node to a row of writer values.
func renderRow(node ast.SchemaNode) ([]any, error) {
	recordNode, ok := node.(*ast.ArrayDataNode)
	if !ok {
		return nil, errNodeType("record", "*ast.ArrayDataNode", node)
	}
	row := make([]any, 0, recordNode.Len())
	for _, elem := range recordNode.Elements() {
		literalNode, ok := elem.(*ast.LiteralNode)
		if !ok {
			return nil, errNodeType("field", "*ast.LiteralNode", elem)
		}
		row = append(row, literalNode.Value())
	}
	return row, nil
}
