// Package tagsafe implements the tag-protecting text cleaning pipeline:
//
//	raw HTML -> plain text -> protect vocabulary terms -> normalize -> restore terms
//
// Generic normalization deletes the symbols that make technical terms
// meaningful ("c++" would become "c", "node.js" would become "node js").
// Before normalizing, every known term is swapped for a placeholder built
// from characters the normalizer keeps, and swapped back afterwards.
package tagsafe

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jmylchreest/examiq/pkg/vocab"
)

// Protector replaces vocabulary terms with their placeholders.
//
// Terms are applied longest first, so "c++" is protected before "c" gets a
// chance to consume its first character. A match must not be glued to a
// neighbouring word character on any side where the term itself starts or
// ends with a word character: "c" matches in "c and" but not in "abc",
// while "c++" matches in "c++ and" and "c++11" alike.
type Protector struct {
	terms []vocab.Term
}

// NewProtector creates a protector for the mapping's terms.
func NewProtector(m *vocab.Mapping) *Protector {
	return &Protector{terms: m.ByLength()}
}

// Name returns the cleaner type.
func (p *Protector) Name() string {
	return "protect"
}

// Clean lowercases text and protects every term. It never returns an error.
func (p *Protector) Clean(text string) (string, error) {
	out, _ := p.Protect(text)
	return out, nil
}

// Protect lowercases text and replaces every bounded occurrence of every
// term with its placeholder. It returns the number of replacements made.
func (p *Protector) Protect(text string) (string, int) {
	text = strings.ToLower(text)

	total := 0
	for _, t := range p.terms {
		var n int
		text, n = replaceBounded(text, t.Text, t.Placeholder)
		total += n
	}
	return text, total
}

// replaceBounded replaces the bounded, non-overlapping occurrences of term
// in text, scanning left to right.
func replaceBounded(text, term, placeholder string) (string, int) {
	if term == "" || !strings.Contains(text, term) {
		return text, 0
	}

	first, _ := utf8.DecodeRuneInString(term)
	last, _ := utf8.DecodeLastRuneInString(term)
	checkBefore := isWordRune(first)
	checkAfter := isWordRune(last)

	var b strings.Builder
	count := 0
	copied := 0
	for search := 0; search <= len(text)-len(term); {
		j := strings.Index(text[search:], term)
		if j < 0 {
			break
		}
		start := search + j
		end := start + len(term)

		if (checkBefore && wordBefore(text, start)) || (checkAfter && wordAfter(text, end)) {
			_, size := utf8.DecodeRuneInString(text[start:])
			search = start + size
			continue
		}

		if count == 0 {
			b.Grow(len(text))
		}
		b.WriteString(text[copied:start])
		b.WriteString(placeholder)
		copied = end
		search = end
		count++
	}

	if count == 0 {
		return text, 0
	}
	b.WriteString(text[copied:])
	return b.String(), count
}

// isWordRune reports whether r counts as part of a word: a letter, a
// digit or an underscore.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordAfter(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}
