package classifier

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/examiq/pkg/cleaner"
	"github.com/jmylchreest/examiq/pkg/dataset"
)

// PredictedColumn is the name of the column PredictFrame adds.
const PredictedColumn = "Predicted"

// Prediction is the classifier output for one text.
type Prediction struct {
	Label         string             `json:"label"`
	Probabilities map[string]float64 `json:"probabilities"`
	Cleaned       string             `json:"cleaned"`
}

// Classifier cleans raw text and classifies it with an artifact.
// It is safe for concurrent use.
type Classifier struct {
	cleaner  cleaner.Cleaner
	artifact *Artifact
	workers  int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithWorkers sets the concurrency of PredictFrame. Default: 1.
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n < 1 {
			n = 1
		}
		c.workers = n
	}
}

// New creates a classifier. c prepares raw text; pass cleaner.NewNoop()
// for text that is already clean.
func New(c cleaner.Cleaner, a *Artifact, opts ...Option) (*Classifier, error) {
	if c == nil {
		c = cleaner.NewNoop()
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	cl := &Classifier{cleaner: c, artifact: a, workers: 1}
	for _, opt := range opts {
		opt(cl)
	}
	return cl, nil
}

// Artifact returns the loaded artifact.
func (c *Classifier) Artifact() *Artifact {
	return c.artifact
}

// Classes returns the model's classes.
func (c *Classifier) Classes() []string {
	return c.artifact.Model.Classes
}

// Predict cleans text and classifies it.
func (c *Classifier) Predict(text string) (*Prediction, error) {
	cleaned, err := c.cleaner.Clean(text)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	return c.PredictCleaned(cleaned), nil
}

// PredictCleaned classifies text that has already been cleaned.
func (c *Classifier) PredictCleaned(cleaned string) *Prediction {
	x := c.artifact.Vectorizer.Transform(cleaned)
	label, proba := c.artifact.Model.Predict(x)

	probs := make(map[string]float64, len(proba))
	for i, p := range proba {
		probs[c.artifact.Model.Classes[i]] = p
	}
	return &Prediction{Label: label, Probabilities: probs, Cleaned: cleaned}
}

// PredictFrame classifies every value of column and returns a new frame
// with a "Predicted" column. Missing values are classified as empty text.
func (c *Classifier) PredictFrame(ctx context.Context, frame *dataset.Frame, column string) (*dataset.Frame, error) {
	values, err := frame.Column(column)
	if err != nil {
		return nil, err
	}

	labels := make([]*string, len(values))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, raw := range values {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text := ""
			if raw != nil {
				text = *raw
			}
			p, err := c.Predict(text)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			labels[i] = dataset.Str(p.Label)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frame.WithColumn(PredictedColumn, labels)
}
