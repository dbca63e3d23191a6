package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidArtifact is returned when an artifact cannot be read or is
// inconsistent.
var ErrInvalidArtifact = errors.New("invalid classifier artifact")

// Artifact bundles a fitted vectorizer with the model trained on its
// features.
type Artifact struct {
	Name       string            `json:"name,omitempty"`
	Version    string            `json:"version,omitempty"`
	Vectorizer Vectorizer        `json:"vectorizer"`
	Model      Model             `json:"model"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ValidationError describes one problem with an artifact.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

var validate = validator.New()

// LoadArtifact reads and validates an artifact from a JSON file.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	defer f.Close()

	a, err := ReadArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// ReadArtifact decodes and validates an artifact.
func ReadArtifact(r io.Reader) (*Artifact, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidArtifact, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks the struct constraints and that the model's shape fits
// the vectorizer. A valid artifact is ready for concurrent use.
func (a *Artifact) Validate() error {
	var problems []ValidationError

	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
		}
		for _, e := range verrs {
			problems = append(problems, ValidationError{
				Field:   e.Namespace(),
				Message: formatValidationError(e),
			})
		}
	}
	if len(problems) == 0 {
		problems = a.checkShape()
	}
	if len(problems) == 0 {
		if err := a.Vectorizer.compile(); err != nil {
			problems = append(problems, ValidationError{
				Field:   "Artifact.Vectorizer.TokenPattern",
				Message: err.Error(),
			})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, strings.Join(msgs, "; "))
}

func (a *Artifact) checkShape() []ValidationError {
	var problems []ValidationError
	m := &a.Model
	features := a.Vectorizer.Features()

	rows := len(m.Classes)
	if rows == 2 {
		// Binary models may carry either one row or one per class.
		if len(m.Coef) == 1 {
			rows = 1
		}
	}
	if len(m.Coef) != rows {
		problems = append(problems, ValidationError{
			Field:   "Artifact.Model.Coef",
			Message: fmt.Sprintf("has %d rows for %d classes", len(m.Coef), len(m.Classes)),
		})
	}
	if len(m.Intercept) != len(m.Coef) {
		problems = append(problems, ValidationError{
			Field:   "Artifact.Model.Intercept",
			Message: fmt.Sprintf("has %d values for %d coefficient rows", len(m.Intercept), len(m.Coef)),
		})
	}
	for i, row := range m.Coef {
		if len(row) != features {
			problems = append(problems, ValidationError{
				Field:   fmt.Sprintf("Artifact.Model.Coef[%d]", i),
				Message: fmt.Sprintf("has %d values for %d features", len(row), features),
			})
		}
	}
	for term, col := range a.Vectorizer.Vocabulary {
		if col < 0 || col >= features {
			problems = append(problems, ValidationError{
				Field:   "Artifact.Vectorizer.Vocabulary",
				Message: fmt.Sprintf("term %q maps to column %d outside [0, %d)", term, col, features),
			})
		}
	}
	return problems
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", e.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "unique":
		return "must not contain duplicates"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
