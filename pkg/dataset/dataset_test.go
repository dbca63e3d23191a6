package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func cell(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestReadCSV_Questions(t *testing.T) {
	f, err := ReadCSV(filepath.Join("testdata", "questions.csv"))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if f.Len() != 5 {
		t.Errorf("Len() = %d, want 5", f.Len())
	}
	if got := strings.Join(f.Columns(), ","); got != "Id,Score,Body" {
		t.Errorf("Columns() = %q", got)
	}

	body, err := f.Column("Body")
	if err != nil {
		t.Fatalf("Column() error = %v", err)
	}
	if body[1] != nil {
		t.Errorf("Body[1] = %q, want missing", *body[1])
	}
	if !strings.Contains(cell(body[0]), "node.js") {
		t.Errorf("Body[0] = %q", cell(body[0]))
	}
}

func TestParseCSV_NAValues(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("a,b\nNA,1\nnull,\nvalue,NaN\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	a, _ := f.Column("a")
	b, _ := f.Column("b")
	want := []struct{ a, b string }{
		{"<nil>", "1"},
		{"<nil>", "<nil>"},
		{"value", "<nil>"},
	}
	for i, w := range want {
		if cell(a[i]) != w.a || cell(b[i]) != w.b {
			t.Errorf("row %d = (%q, %q), want (%q, %q)", i, cell(a[i]), cell(b[i]), w.a, w.b)
		}
	}
}

func TestParseCSV_CustomNAValues(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("a\nNA\n-\n"), WithNAValues("-"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	a, _ := f.Column("a")
	if cell(a[0]) != "NA" || a[1] != nil {
		t.Errorf("column = [%q, %q]", cell(a[0]), cell(a[1]))
	}
}

func TestParseCSV_RaggedRows(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("a,b,c\n1\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", f.Len())
	}
	if f.Value(0, "c") != nil {
		t.Error("short row should be padded with nulls")
	}
	if cell(f.Value(1, "c")) != "3" {
		t.Errorf("Value(1, c) = %q, want 3", cell(f.Value(1, "c")))
	}
}

func TestParseCSV_HeaderNames(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("a,a,,a\n1,2,3,4\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	want := "a,a.1,Unnamed: 2,a.2"
	if got := strings.Join(f.Columns(), ","); got != want {
		t.Errorf("Columns() = %q, want %q", got, want)
	}
}

func TestParseCSV_WithoutHeader(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("x,y\n1,2\n"), WithoutHeader())
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if f.Len() != 2 || cell(f.Value(0, "0")) != "x" {
		t.Errorf("got %d rows, first cell %q", f.Len(), cell(f.Value(0, "0")))
	}
}

func TestParseCSV_Encoding(t *testing.T) {
	latin1 := []byte("name\ncaf\xe9\n")

	f, err := ParseCSV(bytes.NewReader(latin1))
	if err != nil {
		t.Fatalf("ParseCSV(auto) error = %v", err)
	}
	if got := cell(f.Value(0, "name")); got != "café" {
		t.Errorf("auto decoded %q, want café", got)
	}

	if _, err := ParseCSV(bytes.NewReader(latin1), WithEncoding(EncodingUTF8)); !errors.Is(err, ErrDataSource) {
		t.Errorf("ParseCSV(utf-8) error = %v, want ErrDataSource", err)
	}

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id\n1\n")...)
	f, err = ParseCSV(bytes.NewReader(bom))
	if err != nil {
		t.Fatalf("ParseCSV(bom) error = %v", err)
	}
	if !f.HasColumn("id") {
		t.Errorf("BOM not stripped: %q", f.Columns())
	}
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	if !errors.Is(err, ErrDataSource) {
		t.Errorf("ParseCSV(empty) error = %v, want ErrDataSource", err)
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	if !errors.Is(err, ErrDataSource) {
		t.Errorf("ReadCSV() error = %v, want ErrDataSource", err)
	}
}

func TestFrame_Floats(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("score\n1\n 2.5 \nabc\n\n-3\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	values, ok, err := f.Floats("score")
	if err != nil {
		t.Fatalf("Floats() error = %v", err)
	}
	wantOK := []bool{true, true, false, true}
	wantV := []float64{1, 2.5, 0, -3}
	for i := range wantOK {
		if ok[i] != wantOK[i] || values[i] != wantV[i] {
			t.Errorf("row %d = (%v, %v), want (%v, %v)", i, values[i], ok[i], wantV[i], wantOK[i])
		}
	}

	if _, _, err := f.Floats("missing"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Floats(missing) error = %v, want ErrColumnNotFound", err)
	}
}

func TestFrame_Floats_NonFinite(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("score\ninf\n-Infinity\n+Inf\n7\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	values, ok, err := f.Floats("score")
	if err != nil {
		t.Fatalf("Floats() error = %v", err)
	}
	wantOK := []bool{false, false, false, true}
	for i := range wantOK {
		if ok[i] != wantOK[i] {
			t.Errorf("row %d ok = %v, want %v", i, ok[i], wantOK[i])
		}
	}
	if values[3] != 7 {
		t.Errorf("row 3 = %v, want 7", values[3])
	}
}

func TestFrame_WithColumn_DoesNotMutate(t *testing.T) {
	f := FromStrings("Body", []string{"a", "", "c"})

	out, err := f.WithColumn("Body_cleaned", []*string{Str("A"), Str(""), Str("C")})
	if err != nil {
		t.Fatalf("WithColumn() error = %v", err)
	}

	if len(f.Columns()) != 1 {
		t.Errorf("receiver gained columns: %v", f.Columns())
	}
	if got := strings.Join(out.Columns(), ","); got != "Body,Body_cleaned" {
		t.Errorf("Columns() = %q", got)
	}
	if out.Len() != 3 || cell(out.Value(2, "Body_cleaned")) != "C" {
		t.Errorf("unexpected derived frame")
	}
	if out.Value(1, "Body") != nil {
		t.Error("empty string in FromStrings should be missing")
	}
}

func TestFrame_WithColumn_Errors(t *testing.T) {
	f := FromStrings("a", []string{"1", "2"})

	if _, err := f.WithColumn("a", []*string{nil, nil}); !errors.Is(err, ErrColumnExists) {
		t.Errorf("duplicate column error = %v, want ErrColumnExists", err)
	}
	if _, err := f.WithColumn("b", []*string{nil}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short column error = %v, want ErrLengthMismatch", err)
	}
}

func TestFrame_Select(t *testing.T) {
	f, _ := ParseCSV(strings.NewReader("a,b,c\n1,2,3\n"))

	s, err := f.Select("c", "a")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got := strings.Join(s.Columns(), ","); got != "c,a" {
		t.Errorf("Columns() = %q", got)
	}
	if _, err := f.Select("z"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Select(z) error = %v, want ErrColumnNotFound", err)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("id,body\n1,\"hello, world\"\n2,\n"))
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, f); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "id,body\n1,\"hello, world\"\n2,\n"
	if buf.String() != want {
		t.Errorf("WriteCSV() = %q, want %q", buf.String(), want)
	}
}

func TestWriteCSV_EmptyReadsBackMissing(t *testing.T) {
	f, err := New([]string{"body"}, [][]*string{{Str("text"), Str("")}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, f); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	back, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if v := back.Value(1, "body"); v != nil {
		t.Errorf("Value(1) = %q, want missing", *v)
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	f := FromStrings("x", []string{"1", "2"})

	if err := WriteCSVFile(path, f); err != nil {
		t.Fatalf("WriteCSVFile() error = %v", err)
	}
	back, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if back.Len() != 2 {
		t.Errorf("Len() = %d, want 2", back.Len())
	}
}
