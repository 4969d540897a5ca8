package csv

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"empty", "", [][]string{}},
		{"simple", "name,age\nAlice,30\nBob,25", [][]string{{"name", "age"}, {"Alice", "30"}, {"Bob", "25"}}},
		{"quoted", "\"a,b\",\"c\"\"d\"", [][]string{{"a,b", `c"d`}}},
		{"trailing empty field", "a,\n", [][]string{{"a", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if _, ok := node.(*ast.ArrayDataNode); !ok {
				t.Fatalf("Parse() = %T, want *ast.ArrayDataNode", node)
			}
			got, err := NodeToRecords(node)
			if err != nil {
				t.Fatalf("NodeToRecords() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NodeToRecords(Parse()) = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Positions(t *testing.T) {
	node, err := Parse("a,b\n\"c\nc\",d")
	if err != nil {
		t.Fatal(err)
	}
	rows := node.(*ast.ArrayDataNode).Elements()
	second := rows[1].(*ast.ArrayDataNode).Elements()

	want := ast.NewPosition(10, 3, 4)
	if got := second[1].Position(); !reflect.DeepEqual(got, want) {
		t.Errorf("position of d = %v, want %v", got, want)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse("a,\"\"failed"); !errors.Is(err, ErrUnexpectedChar) {
		t.Errorf("Parse() error = %v, want ErrUnexpectedChar", err)
	}
	if _, err := ParseWithOptions("a", ReaderOptions{Delimiter: '\r'}); err == nil {
		t.Error("ParseWithOptions() with CR delimiter succeeded")
	}
}

func TestParseReader(t *testing.T) {
	opts := DefaultReaderOptions()
	opts.Delimiter = '\t'
	opts.SkipEmptyLines = true

	node, err := ParseReaderWithOptions(strings.NewReader("a\tb\n\nc\td\n"), opts)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := NodeToRecords(node)
	if want := [][]string{{"a", "b"}, {"c", "d"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("ParseReaderWithOptions() = %q, want %q", got, want)
	}

	node, err = ParseReader(strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	if n := node.(*ast.ArrayDataNode).Len(); n != 1 {
		t.Errorf("ParseReader() rows = %d, want 1", n)
	}
}

func TestNodeToRecords_Errors(t *testing.T) {
	pos := ast.ZeroPosition()
	tests := []struct {
		name string
		node ast.SchemaNode
	}{
		{"literal document", ast.NewLiteralNode("x", pos)},
		{"literal row", ast.NewArrayDataNode([]ast.SchemaNode{ast.NewLiteralNode("x", pos)}, pos)},
		{"nested field", ast.NewArrayDataNode([]ast.SchemaNode{
			ast.NewArrayDataNode([]ast.SchemaNode{ast.NewArrayDataNode(nil, pos)}, pos),
		}, pos)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NodeToRecords(tt.node); err == nil {
				t.Error("NodeToRecords() succeeded")
			}
		})
	}
}

func TestRecordsToNode(t *testing.T) {
	records := [][]string{{"name", "age"}, {"Alice", "30"}}
	node := RecordsToNode(records)

	got, err := NodeToRecords(node)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Errorf("NodeToRecords(RecordsToNode()) = %q, want %q", got, records)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid", "a,b\n\"c\nd\",e\n", nil},
		{"empty", "", nil},
		{"after closing quote", "\"a\"b", ErrUnexpectedChar},
		{"unterminated", "\"a", ErrUnterminatedQuote},
		{"ragged", "a,b\nc", ErrFieldCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if rerr := ValidateReader(strings.NewReader(tt.input)); !errors.Is(rerr, tt.wantErr) {
				t.Errorf("ValidateReader() error = %v, want %v", rerr, tt.wantErr)
			}
		})
	}

	opts := DefaultReaderOptions()
	opts.InsufficientFields = InsufficientEmptyString
	if err := ValidateWithOptions("a,b\nc", opts); err != nil {
		t.Errorf("ValidateWithOptions() error = %v", err)
	}
	if err := ValidateReaderWithOptions(strings.NewReader("a;b"), ReaderOptions{Delimiter: ';'}); err != nil {
		t.Errorf("ValidateReaderWithOptions() error = %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(); got != "CSV" {
		t.Errorf("Format() = %q, want CSV", got)
	}
}
