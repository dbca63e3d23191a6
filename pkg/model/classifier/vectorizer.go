// Package classifier runs a pre-trained bag-of-words difficulty classifier
// over cleaned question text.
//
// Artifacts are plain JSON: a vectorizer (term to feature index) and a
// linear model (one coefficient row per class, or a single row for binary
// models). Training happens elsewhere; this package only loads and
// applies them.
package classifier

import (
	"regexp"
	"strings"
)

// DefaultTokenPattern matches runs of two or more word characters.
const DefaultTokenPattern = `\b\w\w+\b`

// Vectorizer turns text into bag-of-words feature counts.
type Vectorizer struct {
	// Vocabulary maps each feature term to its column.
	Vocabulary map[string]int `json:"vocabulary" validate:"required,min=1"`

	// TokenPattern selects tokens. Empty means DefaultTokenPattern.
	TokenPattern string `json:"token_pattern,omitempty"`

	// Lowercase folds text before tokenizing.
	Lowercase bool `json:"lowercase"`

	// Binary caps every count at 1.
	Binary bool `json:"binary,omitempty"`

	// NGramMax is the largest n-gram size; 0 or 1 means unigrams only.
	NGramMax int `json:"ngram_max,omitempty" validate:"gte=0,lte=2"`

	re *regexp.Regexp
}

// Vector is a sparse feature vector: column to value.
type Vector map[int]float64

// compile prepares the token pattern.
func (v *Vectorizer) compile() error {
	pattern := v.TokenPattern
	if pattern == "" {
		pattern = DefaultTokenPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	v.re = re
	return nil
}

// Tokens returns the terms of text that the vectorizer considers,
// including bigrams when enabled.
func (v *Vectorizer) Tokens(text string) []string {
	if v.re == nil {
		if err := v.compile(); err != nil {
			return nil
		}
	}
	if v.Lowercase {
		text = strings.ToLower(text)
	}

	words := v.re.FindAllString(text, -1)
	if v.NGramMax < 2 {
		return words
	}

	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// Transform counts the vocabulary terms of text. Terms outside the
// vocabulary are ignored.
func (v *Vectorizer) Transform(text string) Vector {
	vec := make(Vector)
	for _, tok := range v.Tokens(text) {
		col, ok := v.Vocabulary[tok]
		if !ok {
			continue
		}
		if v.Binary {
			vec[col] = 1
			continue
		}
		vec[col]++
	}
	return vec
}

// Features returns the number of feature columns.
func (v *Vectorizer) Features() int {
	return len(v.Vocabulary)
}
