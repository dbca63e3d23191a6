package tagsafe

import (
	"strings"

	"github.com/jmylchreest/examiq/pkg/vocab"
)

// Restorer swaps placeholders back to their vocabulary terms.
//
// Placeholders are prefix-free, so a single literal replacement pass is
// enough and replacement order does not matter.
type Restorer struct {
	replacer *strings.Replacer
	empty    bool
}

// NewRestorer creates a restorer for the mapping's placeholders.
func NewRestorer(m *vocab.Mapping) *Restorer {
	terms := m.Terms()
	pairs := make([]string, 0, 2*len(terms))
	for _, t := range terms {
		pairs = append(pairs, t.Placeholder, t.Text)
	}
	return &Restorer{
		replacer: strings.NewReplacer(pairs...),
		empty:    len(terms) == 0,
	}
}

// Name returns the cleaner type.
func (r *Restorer) Name() string {
	return "restore"
}

// Clean restores every placeholder in text. It never returns an error.
func (r *Restorer) Clean(text string) (string, error) {
	return r.Restore(text), nil
}

// Restore replaces every placeholder in text with its term.
func (r *Restorer) Restore(text string) string {
	if r.empty {
		return text
	}
	return r.replacer.Replace(text)
}

// Residual reports whether text still holds a placeholder marker. Cleaned
// text is lowercase, so the uppercase marker only appears when a
// placeholder was mangled before it could be restored.
func Residual(text string) bool {
	return strings.Contains(text, vocab.PlaceholderPrefix)
}
