// Package vocab loads the list of protected technical terms ("c++", "c#",
// "node.js") and builds the bidirectional term/placeholder mapping used by
// the tag-safe cleaning pipeline.
//
// A Mapping is immutable once built and safe for concurrent read-only use.
// Nothing in this package keeps process-wide state: every caller builds and
// owns its own Mapping.
package vocab

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

// PlaceholderPrefix starts every placeholder token.
//
// Placeholders are uppercase ASCII letters and digits only. Protection runs
// on lowercased text against lowercased terms, so a placeholder can never be
// matched as a term, and it survives any normalizer that keeps [A-Za-z0-9].
const PlaceholderPrefix = "TAGTOKEN"

// placeholderEnd terminates the index so that no placeholder is a prefix of
// another (TAGTOKEN1X vs TAGTOKEN12X).
const placeholderEnd = "X"

var (
	// ErrDataSource is returned when the vocabulary source cannot be read.
	ErrDataSource = errors.New("vocabulary source error")

	// ErrEmptyVocabulary is returned when a source yields no usable terms.
	ErrEmptyVocabulary = errors.New("vocabulary has no usable terms")
)

// Placeholder returns the placeholder token for the term at index i.
func Placeholder(i int) string {
	return PlaceholderPrefix + strconv.Itoa(i) + placeholderEnd
}

// Normalize lowercases and trims a raw vocabulary entry.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Term is one protected vocabulary entry.
type Term struct {
	// Text is the normalized term.
	Text string `json:"text"`
	// Index is the term's position among the usable source entries.
	Index int `json:"index"`
	// Placeholder is the synthetic token substituted during cleaning.
	Placeholder string `json:"placeholder"`
}

// Mapping is the ordered one-to-one correspondence between terms and
// placeholders.
type Mapping struct {
	terms   []Term // source order
	ordered []Term // longest first
	forward map[string]string
	reverse map[string]string
}

// Report summarizes how a vocabulary source was turned into a Mapping.
type Report struct {
	Rows       int `json:"rows"`
	Kept       int `json:"kept"`
	Blank      int `json:"blank"`
	Duplicates int `json:"duplicates"`
}

// New builds a Mapping from raw entries. Entries are normalized, blanks are
// dropped and exact duplicates keep only their first occurrence. The
// returned Mapping may be empty; use Load or FromReader for sources that
// must not be.
func New(raw []string) (*Mapping, *Report) {
	report := &Report{Rows: len(raw)}
	m := &Mapping{
		forward: make(map[string]string, len(raw)),
		reverse: make(map[string]string, len(raw)),
	}

	for _, entry := range raw {
		text := Normalize(entry)
		if text == "" {
			report.Blank++
			continue
		}
		if _, dup := m.forward[text]; dup {
			report.Duplicates++
			continue
		}

		t := Term{Text: text, Index: len(m.terms), Placeholder: Placeholder(len(m.terms))}
		m.terms = append(m.terms, t)
		m.forward[t.Text] = t.Placeholder
		m.reverse[t.Placeholder] = t.Text
	}
	report.Kept = len(m.terms)

	m.ordered = make([]Term, len(m.terms))
	copy(m.ordered, m.terms)
	sort.SliceStable(m.ordered, func(i, j int) bool {
		return len(m.ordered[i].Text) > len(m.ordered[j].Text)
	})

	return m, report
}

// Empty returns a mapping with no terms. Cleaning with it protects nothing.
func Empty() *Mapping {
	m, _ := New(nil)
	return m
}

// Len returns the number of terms.
func (m *Mapping) Len() int {
	return len(m.terms)
}

// Terms returns the terms in source order.
func (m *Mapping) Terms() []Term {
	out := make([]Term, len(m.terms))
	copy(out, m.terms)
	return out
}

// ByLength returns the terms longest first, ties kept in source order.
// This is the order in which terms must be protected.
func (m *Mapping) ByLength() []Term {
	out := make([]Term, len(m.ordered))
	copy(out, m.ordered)
	return out
}

// Forward returns the placeholder for a normalized term.
func (m *Mapping) Forward(term string) (string, bool) {
	p, ok := m.forward[term]
	return p, ok
}

// Reverse returns the term for a placeholder.
func (m *Mapping) Reverse(placeholder string) (string, bool) {
	t, ok := m.reverse[placeholder]
	return t, ok
}

// ForwardMap returns a copy of the term to placeholder map.
func (m *Mapping) ForwardMap() map[string]string {
	return copyMap(m.forward)
}

// ReverseMap returns a copy of the placeholder to term map.
func (m *Mapping) ReverseMap() map[string]string {
	return copyMap(m.reverse)
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
