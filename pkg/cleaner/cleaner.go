// Package cleaner provides the text-cleaning stages used to prepare exam
// question bodies for bag-of-words features.
//
// Every stage implements Cleaner, so stages compose with NewChain. The
// tag-safe pipeline in the tagsafe subpackage chains them around the
// vocabulary protection steps.
package cleaner

// Cleaner transforms text into a cleaner form.
type Cleaner interface {
	// Clean transforms the input text.
	// Stages fail soft: malformed input yields best-effort output, not an error.
	Clean(text string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
