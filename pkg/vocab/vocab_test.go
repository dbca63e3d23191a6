package vocab

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/examiq/pkg/dataset"
)

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "TAGTOKEN0X"},
		{7, "TAGTOKEN7X"},
		{123, "TAGTOKEN123X"},
	}

	for _, tt := range tests {
		if got := Placeholder(tt.index); got != tt.want {
			t.Errorf("Placeholder(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestPlaceholder_PrefixFree(t *testing.T) {
	for i := 0; i < 200; i++ {
		for j := 0; j < 200; j++ {
			if i == j {
				continue
			}
			if strings.HasPrefix(Placeholder(j), Placeholder(i)) {
				t.Fatalf("%q is a prefix of %q", Placeholder(i), Placeholder(j))
			}
		}
	}
}

func TestPlaceholder_OnlyAlphanumeric(t *testing.T) {
	for i := 0; i < 1000; i++ {
		for _, r := range Placeholder(i) {
			if !(r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				t.Fatalf("Placeholder(%d) contains %q", i, r)
			}
		}
	}
}

func TestNew_NormalizesAndDeduplicates(t *testing.T) {
	m, report := New([]string{" Python ", "C++", "", "python", "node.js", "   "})

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	if report.Rows != 6 || report.Kept != 3 || report.Blank != 2 || report.Duplicates != 1 {
		t.Errorf("report = %+v", report)
	}

	want := []string{"python", "c++", "node.js"}
	for i, term := range m.Terms() {
		if term.Text != want[i] {
			t.Errorf("Terms()[%d] = %q, want %q", i, term.Text, want[i])
		}
		if term.Index != i {
			t.Errorf("Terms()[%d].Index = %d, want %d", i, term.Index, i)
		}
		if term.Placeholder != Placeholder(i) {
			t.Errorf("Terms()[%d].Placeholder = %q, want %q", i, term.Placeholder, Placeholder(i))
		}
	}
}

func TestMapping_ForwardReverse(t *testing.T) {
	m, _ := New([]string{"c++", "c#"})

	p, ok := m.Forward("c#")
	if !ok || p != "TAGTOKEN1X" {
		t.Errorf("Forward(c#) = %q, %v", p, ok)
	}
	term, ok := m.Reverse("TAGTOKEN0X")
	if !ok || term != "c++" {
		t.Errorf("Reverse(TAGTOKEN0X) = %q, %v", term, ok)
	}
	if _, ok := m.Forward("java"); ok {
		t.Error("Forward(java) found, want missing")
	}

	fwd := m.ForwardMap()
	rev := m.ReverseMap()
	if len(fwd) != 2 || len(rev) != 2 {
		t.Fatalf("map sizes = %d, %d", len(fwd), len(rev))
	}
	for k, v := range fwd {
		if rev[v] != k {
			t.Errorf("reverse[%q] = %q, want %q", v, rev[v], k)
		}
	}

	// Copies must not alias the mapping.
	fwd["c++"] = "changed"
	if p, _ := m.Forward("c++"); p != "TAGTOKEN0X" {
		t.Error("ForwardMap() returned an aliased map")
	}
}

func TestMapping_ByLength(t *testing.T) {
	m, _ := New([]string{"c", "c++", "go", "c#", "node.js"})

	got := make([]string, 0, m.Len())
	for _, term := range m.ByLength() {
		got = append(got, term.Text)
	}

	want := []string{"node.js", "c++", "go", "c#", "c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ByLength() = %v, want %v", got, want)
	}
}

func TestEmpty(t *testing.T) {
	m := Empty()
	if m.Len() != 0 || len(m.Terms()) != 0 {
		t.Errorf("Empty() has %d terms", m.Len())
	}
}

// --- Load Tests ---

func TestLoad_File(t *testing.T) {
	m, report, err := Load(filepath.Join("testdata", "tags.csv"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if report.Rows != 13 || report.Kept != 12 || report.Duplicates != 1 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := m.Forward("sql"); !ok {
		t.Error("expected trimmed, lowercased term 'sql'")
	}
	if _, ok := m.Forward("tag"); ok {
		t.Error("header row must not become a term")
	}
	if p, _ := m.Forward("python"); p != "TAGTOKEN0X" {
		t.Errorf("python placeholder = %q, want TAGTOKEN0X", p)
	}
}

func TestLoad_Latin1(t *testing.T) {
	m, _, err := Load(filepath.Join("testdata", "latin1_tags.csv"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := m.Forward("café"); !ok {
		t.Errorf("expected latin-1 decoded term, got %v", m.Terms())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrDataSource) {
		t.Errorf("Load() error = %v, want ErrDataSource", err)
	}
	if !errors.Is(err, dataset.ErrDataSource) {
		t.Errorf("Load() error = %v, want wrapped dataset.ErrDataSource", err)
	}
}

func TestLoad_NoUsableTerms(t *testing.T) {
	path := filepath.Join("testdata", "blank_tags.csv")

	_, report, err := Load(path)
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("Load() error = %v, want ErrEmptyVocabulary", err)
	}
	if !errors.Is(err, ErrDataSource) {
		t.Errorf("Load() error = %v, want ErrDataSource", err)
	}
	if report == nil || report.Blank != 2 {
		t.Errorf("report = %+v, want 2 blanks", report)
	}

	m, _, err := Load(path, AllowEmpty())
	if err != nil {
		t.Fatalf("Load(AllowEmpty) error = %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestFromReader_WithoutHeader(t *testing.T) {
	m, _, err := FromReader(strings.NewReader("c++\nc#\n"), WithoutHeader())
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestFromReader_KeepsNullLikeTerms(t *testing.T) {
	m, _, err := FromReader(strings.NewReader("tag\nnull\nnone\nnan\n"))
	if err != nil {
		t.Fatalf("FromReader() error = %v", err)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3: %v", m.Len(), m.Terms())
	}
}
