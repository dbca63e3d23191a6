package cleaner

import (
	"regexp"
	"strings"
)

var (
	// disallowedRegex matches anything outside letters, digits and whitespace.
	disallowedRegex = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

	// whitespaceRegex matches runs of whitespace characters.
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Normalizer replaces every character outside [a-zA-Z0-9] and whitespace
// with a space, collapses whitespace runs and trims the result.
//
// Anything that must survive this stage (such as vocabulary placeholders)
// has to be built from that alphabet. Normalize is idempotent.
type Normalizer struct{}

// NewNormalizer creates a normalizing cleaner.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Name returns the cleaner type.
func (n *Normalizer) Name() string {
	return "normalize"
}

// Clean normalizes text. It never returns an error.
func (n *Normalizer) Clean(text string) (string, error) {
	return Normalize(text), nil
}

// Normalize applies the symbol and whitespace normalization to text.
func Normalize(text string) string {
	text = disallowedRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CollapseWhitespace collapses whitespace runs to single spaces and trims,
// leaving every other character alone.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}
