package classifier

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/jmylchreest/examiq/pkg/cleaner/tagsafe"
	"github.com/jmylchreest/examiq/pkg/dataset"
	"github.com/jmylchreest/examiq/pkg/vocab"
)

func loadTestArtifact(t *testing.T) *Artifact {
	t.Helper()
	a, err := LoadArtifact("testdata/model.json")
	if err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}
	return a
}

func testPipeline() *tagsafe.Pipeline {
	m, _ := vocab.New([]string{"c++", "python"})
	return tagsafe.New(m, tagsafe.WithWorkers(1))
}

func TestVectorizer_Tokens(t *testing.T) {
	tests := []struct {
		name string
		v    Vectorizer
		text string
		want []string
	}{
		{
			name: "default_pattern",
			v:    Vectorizer{Lowercase: true},
			text: "A C++ question about Go",
			want: []string{"question", "about", "go"},
		},
		{
			name: "whitespace_pattern",
			v:    Vectorizer{TokenPattern: `[^\s]+`},
			text: "c++ and node.js",
			want: []string{"c++", "and", "node.js"},
		},
		{
			name: "bigrams",
			v:    Vectorizer{NGramMax: 2},
			text: "one two three",
			want: []string{"one", "two", "three", "one two", "two three"},
		},
		{
			name: "case_kept",
			v:    Vectorizer{},
			text: "Hello World",
			want: []string{"Hello", "World"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Tokens(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestVectorizer_Transform(t *testing.T) {
	v := Vectorizer{Vocabulary: map[string]int{"go": 0, "rust": 1}, Lowercase: true}

	got := v.Transform("Go go GO rust zig")
	want := Vector{0: 3, 1: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transform() = %v, want %v", got, want)
	}

	v.Binary = true
	got = v.Transform("Go go GO rust zig")
	want = Vector{0: 1, 1: 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Transform() binary = %v, want %v", got, want)
	}
}

func TestModel_PredictProba(t *testing.T) {
	t.Run("multinomial_sums_to_one", func(t *testing.T) {
		m := Model{
			Classes:   []string{"a", "b", "c"},
			Coef:      [][]float64{{1}, {0}, {-1}},
			Intercept: []float64{0, 0, 0},
		}
		proba := m.PredictProba(Vector{0: 2})
		sum := 0.0
		for _, p := range proba {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("sum = %v, want 1", sum)
		}
		if !(proba[0] > proba[1] && proba[1] > proba[2]) {
			t.Errorf("proba = %v, want decreasing", proba)
		}
	})

	t.Run("binary_sigmoid", func(t *testing.T) {
		m := Model{
			Classes:   []string{"neg", "pos"},
			Coef:      [][]float64{{1, -1}},
			Intercept: []float64{0},
		}
		label, proba := m.Predict(Vector{0: 1})
		if label != "pos" {
			t.Errorf("label = %q, want pos", label)
		}
		want := 1 / (1 + math.Exp(-1))
		if math.Abs(proba[1]-want) > 1e-9 || math.Abs(proba[0]-(1-want)) > 1e-9 {
			t.Errorf("proba = %v, want [%v %v]", proba, 1-want, want)
		}

		label, _ = m.Predict(Vector{1: 1})
		if label != "neg" {
			t.Errorf("label = %q, want neg", label)
		}
	})

	t.Run("large_scores_stable", func(t *testing.T) {
		m := Model{
			Classes:   []string{"a", "b"},
			Coef:      [][]float64{{1000}, {-1000}},
			Intercept: []float64{0, 0},
		}
		proba := m.PredictProba(Vector{0: 1})
		if math.IsNaN(proba[0]) || proba[0] != 1 {
			t.Errorf("proba = %v", proba)
		}
	})
}

func TestLoadArtifact(t *testing.T) {
	a := loadTestArtifact(t)
	if a.Name != "difficulty-bow" || a.Version != "1.0" {
		t.Errorf("Name/Version = %q/%q", a.Name, a.Version)
	}
	if a.Vectorizer.Features() != 5 {
		t.Errorf("Features() = %d, want 5", a.Vectorizer.Features())
	}
	if a.Metadata["trained_on"] != "questions.csv" {
		t.Errorf("Metadata = %v", a.Metadata)
	}
}

func TestLoadArtifact_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		wantMsg string
	}{
		{name: "missing_file", path: "testdata/nope.json"},
		{name: "bad_shape", path: "testdata/bad_shape.json", wantMsg: "Coef"},
		{name: "bad_json", content: "{not json", wantMsg: "decode"},
		{
			name:    "no_classes",
			content: `{"vectorizer":{"vocabulary":{"a":0}},"model":{"classes":[],"coef":[[1]],"intercept":[0]}}`,
			wantMsg: "Classes",
		},
		{
			name:    "duplicate_classes",
			content: `{"vectorizer":{"vocabulary":{"a":0}},"model":{"classes":["x","x"],"coef":[[1]],"intercept":[0]}}`,
			wantMsg: "duplicates",
		},
		{
			name:    "empty_vocabulary",
			content: `{"vectorizer":{"vocabulary":{}},"model":{"classes":["x","y"],"coef":[[1]],"intercept":[0]}}`,
			wantMsg: "Vocabulary",
		},
		{
			name:    "column_out_of_range",
			content: `{"vectorizer":{"vocabulary":{"a":0,"b":5}},"model":{"classes":["x","y"],"coef":[[1,2]],"intercept":[0]}}`,
			wantMsg: "outside",
		},
		{
			name:    "bad_token_pattern",
			content: `{"vectorizer":{"vocabulary":{"a":0},"token_pattern":"("},"model":{"classes":["x","y"],"coef":[[1]],"intercept":[0]}}`,
			wantMsg: "TokenPattern",
		},
		{
			name:    "bigram_limit",
			content: `{"vectorizer":{"vocabulary":{"a":0},"ngram_max":3},"model":{"classes":["x","y"],"coef":[[1]],"intercept":[0]}}`,
			wantMsg: "at most 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.path != "" {
				_, err = LoadArtifact(tt.path)
			} else {
				_, err = ReadArtifact(strings.NewReader(tt.content))
			}
			if !errors.Is(err, ErrInvalidArtifact) {
				t.Fatalf("error = %v, want ErrInvalidArtifact", err)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestArtifact_SaveRoundTrip(t *testing.T) {
	a := loadTestArtifact(t)
	path := filepath.Join(t.TempDir(), "model.json")
	if err := a.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	b, err := LoadArtifact(path)
	if err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}
	if !reflect.DeepEqual(a.Model, b.Model) || !reflect.DeepEqual(a.Vectorizer.Vocabulary, b.Vectorizer.Vocabulary) {
		t.Error("saved artifact differs from original")
	}
}

func TestClassifier_Predict(t *testing.T) {
	c, err := New(testPipeline(), loadTestArtifact(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		input   string
		label   string
		cleaned string
	}{
		{"<p>Python lists?</p>", "Easy", "python lists"},
		{"<p>C++ templates!</p>", "Hard", "c++ templates"},
		{"Hello, hello", "Medium", "hello hello"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p, err := c.Predict(tt.input)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			if p.Label != tt.label {
				t.Errorf("Label = %q, want %q (probabilities %v)", p.Label, tt.label, p.Probabilities)
			}
			if p.Cleaned != tt.cleaned {
				t.Errorf("Cleaned = %q, want %q", p.Cleaned, tt.cleaned)
			}
			if len(p.Probabilities) != 3 {
				t.Errorf("Probabilities = %v", p.Probabilities)
			}
		})
	}
}

func TestClassifier_PredictEmptyText(t *testing.T) {
	c, err := New(nil, loadTestArtifact(t))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	p, err := c.Predict("")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	// All scores tie at the intercept; the first class wins.
	if p.Label != "Easy" {
		t.Errorf("Label = %q, want Easy", p.Label)
	}
	for class, prob := range p.Probabilities {
		if math.Abs(prob-1.0/3) > 1e-9 {
			t.Errorf("P(%s) = %v, want 1/3", class, prob)
		}
	}
}

func TestClassifier_PredictFrame(t *testing.T) {
	c, err := New(testPipeline(), loadTestArtifact(t), WithWorkers(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	frame := dataset.FromStrings("Body", []string{"python lists", "", "c++ templates"})
	out, err := c.PredictFrame(context.Background(), frame, "Body")
	if err != nil {
		t.Fatalf("PredictFrame() error = %v", err)
	}

	want := []string{"Easy", "Easy", "Hard"}
	for i, w := range want {
		if v := out.Value(i, PredictedColumn); v == nil || *v != w {
			t.Errorf("row %d = %v, want %q", i, v, w)
		}
	}

	if _, err := c.PredictFrame(context.Background(), frame, "Title"); !errors.Is(err, dataset.ErrColumnNotFound) {
		t.Errorf("missing column error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.PredictFrame(ctx, frame, "Body"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}

func TestNew_InvalidArtifact(t *testing.T) {
	a := &Artifact{}
	if _, err := New(nil, a); !errors.Is(err, ErrInvalidArtifact) {
		t.Errorf("New() error = %v, want ErrInvalidArtifact", err)
	}
}
