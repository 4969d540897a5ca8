package parser

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func parseAll(p *Parser) ([][]string, error) {
	rows := [][]string{}
	for {
		row, err := p.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// TestParser_Rows tests the row grammar on valid input.
func TestParser_Rows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  Options
		want  [][]string
	}{
		{"empty input", "", DefaultOptions(), [][]string{}},
		{"BOM only", "\ufeff", DefaultOptions(), [][]string{}},
		{"BOM before first field", "\ufeffa,b", DefaultOptions(), [][]string{{"a", "b"}}},
		{"simple", "a,b,c\nd,e,f", DefaultOptions(), [][]string{{"a", "b", "c"}, {"d", "e", "f"}}},
		{"trailing terminator", "a\n", DefaultOptions(), [][]string{{"a"}}},
		{"empty line kept", "a\n\n", DefaultOptions(), [][]string{{"a"}, {""}}},
		{"trailing delimiter", "a,", DefaultOptions(), [][]string{{"a", ""}}},
		{"only delimiter", ",", DefaultOptions(), [][]string{{"", ""}}},
		{"quoted empty field", `""`, DefaultOptions(), [][]string{{""}}},
		{"empty fields", "a,,b,,c,\nd,,e,,f,", DefaultOptions(), [][]string{{"a", "", "b", "", "c", ""}, {"d", "", "e", "", "f", ""}}},
		{"quoted delimiter", `a,"b,c",d`, DefaultOptions(), [][]string{{"a", "b,c", "d"}}},
		{"doubled quote", `a,"say ""hi""",c`, DefaultOptions(), [][]string{{"a", `say "hi"`, "c"}}},
		{"only doubled quote", `""""`, DefaultOptions(), [][]string{{`"`}}},
		{"quote inside unquoted field", `a"b,c`, DefaultOptions(), [][]string{{`a"b`, "c"}}},
		{"quoted LF", "a,\"b\nb\",c\n\"\nd\",e,f", DefaultOptions(), [][]string{{"a", "b\nb", "c"}, {"\nd", "e", "f"}}},
		{"quoted CRLF", "\"x\r\ny\"\r\nz", DefaultOptions(), [][]string{{"x\r\ny"}, {"z"}}},
		{"CRLF rows", "a,b\r\nc,d\r\n", DefaultOptions(), [][]string{{"a", "b"}, {"c", "d"}}},
		{"CR rows", "a,b\rc,d", DefaultOptions(), [][]string{{"a", "b"}, {"c", "d"}}},
		{"line separator rows", "a\u2028b\u2029c\u0085d", DefaultOptions(), [][]string{{"a"}, {"b"}, {"c"}, {"d"}}},
		{"quoted line separator", "\"\u2028\"", DefaultOptions(), [][]string{{"\u2028"}}},
		{"quoted field then CRLF", "\"a\"\r\n\"b\"", DefaultOptions(), [][]string{{"a"}, {"b"}}},
		{"leading space keeps quotes literal", `a, "b"`, DefaultOptions(), [][]string{{"a", ` "b"`}}},
		{
			name:  "tab delimiter",
			input: "a\tb\tc\nd\te\tf",
			opts:  Options{Delimiter: '\t', Quote: '"', Escape: '"'},
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "custom quote and delimiter",
			input: "$Foo $#$Bar $#$Baz $\na#b#c",
			opts:  Options{Delimiter: '#', Quote: '$', Escape: '$'},
			want:  [][]string{{"Foo ", "Bar ", "Baz "}, {"a", "b", "c"}},
		},
		{
			name:  "backslash escape",
			input: "\"\\\"a\\\"\",\"\\\"This is a test\\\"\"\n\"\\\"b\\\"\",\"This is a \\\"second\\\" test\"",
			opts:  Options{Delimiter: ',', Quote: '"', Escape: '\\'},
			want:  [][]string{{`"a"`, `"This is a test"`}, {`"b"`, `This is a "second" test`}},
		},
		{
			name:  "escape before other character is literal",
			input: `"a\b"`,
			opts:  Options{Delimiter: ',', Quote: '"', Escape: '\\'},
			want:  [][]string{{`a\b`}},
		},
		{
			name:  "skip empty lines",
			input: "a,b,c\n\n\nd,e,f\n",
			opts:  Options{Delimiter: ',', Quote: '"', Escape: '"', SkipEmptyLines: true},
			want:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "skip empty lines keeps quoted empty lines",
			input: "a,b,\"c\n\nc\"\n\nd,e,f\n\"\"",
			opts:  Options{Delimiter: ',', Quote: '"', Escape: '"', SkipEmptyLines: true},
			want:  [][]string{{"a", "b", "c\n\nc"}, {"d", "e", "f"}, {""}},
		},
		{
			name:  "skip empty lines keeps delimiter-only lines",
			input: ",\n",
			opts:  Options{Delimiter: ',', Quote: '"', Escape: '"', SkipEmptyLines: true},
			want:  [][]string{{"", ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAll(NewParserWithOptions(tt.input, tt.opts))
			if err != nil {
				t.Fatalf("Next() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("rows = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestParser_GrammarViolation tests the position reported for characters after a closing quote.
func TestParser_GrammarViolation(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantRow       int
		wantStartLine int
		wantLine      int
		wantColumn    int
		wantChar      rune
	}{
		{"first row", `a,""failed`, 1, 1, 1, 5, 'f'},
		{"space after quote", `a,"" failed`, 1, 1, 1, 5, ' '},
		{"second row", "a,b\nc,\"\"failed", 2, 2, 2, 5, 'f'},
		{"after multi-line row", "a,\"b\nb\"\nc,\"\"failed", 2, 3, 3, 5, 'f'},
		{"inside multi-line field", "a,\"b\nb\"x", 1, 1, 2, 3, 'x'},
		{"CRLF lines", "a\r\n\"b\"c", 2, 2, 2, 4, 'c'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAll(NewParser(tt.input))
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
			if pe.Row != tt.wantRow || pe.StartLine != tt.wantStartLine || pe.Line != tt.wantLine ||
				pe.Column != tt.wantColumn || pe.Char != tt.wantChar {
				t.Errorf("ParseError = %+v, want row %d start %d line %d column %d char %q",
					pe, tt.wantRow, tt.wantStartLine, tt.wantLine, tt.wantColumn, tt.wantChar)
			}
			if !errors.Is(err, ErrUnexpectedChar) {
				t.Errorf("errors.Is(err, ErrUnexpectedChar) = false")
			}
		})
	}
}

// TestParser_UnterminatedQuote tests end of input inside a quoted field.
func TestParser_UnterminatedQuote(t *testing.T) {
	rows, err := parseAll(NewParser("x\na,\"bc\nde"))

	var me *MalformedError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want *MalformedError", err)
	}
	if !errors.Is(err, ErrUnterminatedQuote) {
		t.Errorf("errors.Is(err, ErrUnterminatedQuote) = false")
	}
	if me.Row != 2 || me.Line != 2 {
		t.Errorf("MalformedError row/line = %d/%d, want 2/2", me.Row, me.Line)
	}
	if len(rows) != 1 {
		t.Errorf("rows before error = %q, want one row", rows)
	}
}

// TestParser_StickyError tests that a failed parser keeps failing.
func TestParser_StickyError(t *testing.T) {
	p := NewParser("\"a\"b\nc,d")
	_, err1 := p.Next()
	_, err2 := p.Next()
	if err1 == nil || err1 != err2 {
		t.Errorf("Next() errors = %v, %v; want the same non-nil error twice", err1, err2)
	}

	p = NewParser("a")
	p.Next()
	if _, err := p.Next(); err != io.EOF {
		t.Errorf("Next() at end = %v, want io.EOF", err)
	}
	if _, err := p.Next(); err != io.EOF {
		t.Errorf("Next() after end = %v, want io.EOF", err)
	}
}

// TestParser_RowCount tests logical row numbering.
func TestParser_RowCount(t *testing.T) {
	p := NewParserWithOptions("a\n\"b\nb\"\n\nc", Options{Delimiter: ',', Quote: '"', Escape: '"', SkipEmptyLines: true})

	wantRows := []int{1, 2, 4}
	wantStart := []int{1, 2, 5}
	for i := range wantRows {
		if _, err := p.Next(); err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		if p.Row() != wantRows[i] || p.StartLine() != wantStart[i] {
			t.Errorf("row %d: Row() = %d, StartLine() = %d; want %d, %d",
				i, p.Row(), p.StartLine(), wantRows[i], wantStart[i])
		}
	}
}

// TestParser_FieldPos tests field start positions.
func TestParser_FieldPos(t *testing.T) {
	p := NewParser("ab,\"c\nd\",e\nf")

	if _, err := p.Next(); err != nil {
		t.Fatalf("Next() unexpected error: %v", err)
	}
	want := []Position{
		{Line: 1, Column: 1, Offset: 0},
		{Line: 1, Column: 4, Offset: 3},
		{Line: 2, Column: 4, Offset: 9},
	}
	for i, w := range want {
		got, ok := p.FieldPos(i)
		if !ok || got != w {
			t.Errorf("FieldPos(%d) = %+v, %v; want %+v", i, got, ok, w)
		}
	}
	if _, ok := p.FieldPos(3); ok {
		t.Error("FieldPos(3) reported a position for a missing field")
	}

	if _, err := p.Next(); err != nil {
		t.Fatalf("Next() unexpected error: %v", err)
	}
	if got, _ := p.FieldPos(0); got.Line != 3 || got.Column != 1 {
		t.Errorf("FieldPos(0) on second row = %+v, want line 3 column 1", got)
	}
}

// TestParser_ReaderError tests that a failing source surfaces its error.
func TestParser_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	src := io.MultiReader(strings.NewReader("a,b\nc"), iotest.ErrReader(boom))
	p := NewParserFromReader(src, DefaultOptions())

	row, err := p.Next()
	if err != nil || !reflect.DeepEqual(row, []string{"a", "b"}) {
		t.Fatalf("Next() = %q, %v; want [a b], nil", row, err)
	}
	if _, err := p.Next(); !errors.Is(err, boom) {
		t.Errorf("Next() error = %v, want %v", err, boom)
	}
}

// TestNewParserFromReader tests parsing from an io.Reader.
func TestNewParserFromReader(t *testing.T) {
	input := "h1,h2\r\n\"x,1\",y\r\n"
	got, err := parseAll(NewParserFromReader(strings.NewReader(input), DefaultOptions()))
	if err != nil {
		t.Fatalf("Next() unexpected error: %v", err)
	}
	want := [][]string{{"h1", "h2"}, {"x,1", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestParser_ReuseRecord(t *testing.T) {
	opts := DefaultOptions()
	opts.ReuseRecord = true
	p := NewParserWithOptions("a,b\nc,d,e\nf", opts)

	first, _ := p.Next()
	want := [][]string{{"c", "d", "e"}, {"f"}}
	for _, w := range want {
		row, err := p.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(row, w) {
			t.Errorf("Next() = %q, want %q", row, w)
		}
	}
	// The second row overwrote the first before outgrowing its capacity.
	if first[0] != "c" {
		t.Errorf("first row was not reused: %q", first)
	}
}
