package csv_test

import (
	"reflect"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/shapestone/csvcodec/pkg/csv"
)

// TestRoundTrip writes rows and reads them back with matching options.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		write csv.WriterOptions
		read  csv.ReaderOptions
		rows  [][]string
	}{
		{
			name:  "default",
			write: csv.DefaultWriterOptions(),
			read:  csv.DefaultReaderOptions(),
			rows:  [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name:  "semicolon and LF",
			write: csv.WriterOptions{Delimiter: ';', LineTerminator: "\n", OutputTrailingTerminator: true},
			read:  csv.ReaderOptions{Delimiter: ';'},
			rows:  [][]string{{"1", "2"}, {"x y", ""}},
		},
		{
			name:  "no trailing terminator",
			write: csv.WriterOptions{LineTerminator: "\u2028"},
			read:  csv.ReaderOptions{},
			rows:  [][]string{{"a"}, {"b"}},
		},
		{
			name:  "special characters",
			write: csv.DefaultWriterOptions(),
			read:  csv.DefaultReaderOptions(),
			rows:  [][]string{{"a,b", "c\r\nd", `"q"`}, {"", "\"\"", "e\nf"}},
		},
		{
			name:  "quote always with BOM",
			write: csv.WriterOptions{QuoteMode: csv.QuoteAlways, PrependBOM: true, OutputTrailingTerminator: true},
			read:  csv.DefaultReaderOptions(),
			rows:  [][]string{{"a", "b"}, {"", "c"}},
		},
		{
			name:  "custom quote",
			write: csv.WriterOptions{Quote: '\'', QuoteMode: csv.QuoteNonNumeric, OutputTrailingTerminator: true},
			read:  csv.ReaderOptions{Quote: '\''},
			rows:  [][]string{{"it's", "1.5"}, {"x", "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			if err := csv.WriteAll(&sb, csv.StringRows(tt.rows), tt.write); err != nil {
				t.Fatalf("WriteAll() error = %v", err)
			}
			got, err := csv.ReadAll(sb.String(), tt.read)
			if err != nil {
				t.Fatalf("ReadAll(%q) error = %v", sb.String(), err)
			}
			if !reflect.DeepEqual(got, tt.rows) {
				t.Errorf("round trip of %q = %q, want %q", sb.String(), got, tt.rows)
			}
		})
	}
}

func TestRoundTrip_Scenario(t *testing.T) {
	rows := [][]any{{"a", "b", "c"}, {"d", "e", "f"}}

	var sb strings.Builder
	if err := csv.WriteAll(&sb, rows, csv.DefaultWriterOptions()); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != "a,b,c\r\nd,e,f\r\n" {
		t.Fatalf("WriteAll() = %q", got)
	}
	got, err := csv.ReadAll(sb.String(), csv.DefaultReaderOptions())
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]string{{"a", "b", "c"}, {"d", "e", "f"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() = %q, want %q", got, want)
	}
}

// TestQuoteIdempotence writes fields holding quote characters and reads them back.
func TestQuoteIdempotence(t *testing.T) {
	fields := []string{`"`, `""`, `a"b"c`, `"""start`, `end"""`}

	for _, mode := range []csv.QuoteMode{csv.QuoteWhenNeeded, csv.QuoteAlways} {
		t.Run(mode.String(), func(t *testing.T) {
			opts := csv.DefaultWriterOptions()
			opts.QuoteMode = mode

			var sb strings.Builder
			if err := csv.WriteAll(&sb, [][]any{csv.Strings(fields)}, opts); err != nil {
				t.Fatal(err)
			}
			got, err := csv.ReadAll(sb.String(), csv.DefaultReaderOptions())
			if err != nil {
				t.Fatalf("ReadAll(%q) error = %v", sb.String(), err)
			}
			if len(got) != 1 || !reflect.DeepEqual(got[0], fields) {
				t.Errorf("ReadAll(%q) = %q, want %q", sb.String(), got, fields)
			}
		})
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add("a", "b")
	f.Add("a,b", "\"")
	f.Add("x\r\ny", "")
	f.Add("\u2028", "\ufeff")
	f.Add("\u00e9\u6f22", "\U0001F600")

	f.Fuzz(func(t *testing.T, a, b string) {
		if !validText(a) || !validText(b) {
			t.Skip()
		}
		var sb strings.Builder
		if err := csv.WriteAll(&sb, [][]any{{a, b}}, csv.DefaultWriterOptions()); err != nil {
			t.Fatal(err)
		}
		got, err := csv.ReadAll(sb.String(), csv.DefaultReaderOptions())
		if err != nil {
			t.Fatalf("ReadAll(%q) error = %v", sb.String(), err)
		}
		if len(got) != 1 || got[0][0] != a || got[0][1] != b {
			t.Fatalf("round trip of %q = %q", sb.String(), got)
		}

		streamed, err := csv.ReadAllFrom(iotest.OneByteReader(strings.NewReader(sb.String())), csv.DefaultReaderOptions())
		if err != nil {
			t.Fatalf("ReadAllFrom(%q) error = %v", sb.String(), err)
		}
		if !reflect.DeepEqual(streamed, got) {
			t.Fatalf("ReadAllFrom(%q) = %q, want %q", sb.String(), streamed, got)
		}
	})
}

// validText excludes the characters that the writer leaves unquoted but the
// reader treats as structure: line separators and a leading byte order mark.
func validText(s string) bool {
	if strings.HasPrefix(s, "\ufeff") {
		return false
	}
	for _, r := range s {
		if r == '\u2028' || r == '\u2029' || r == '\u0085' || r == '\ufffd' {
			return false
		}
	}
	return true
}
