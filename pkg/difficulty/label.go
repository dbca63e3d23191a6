package difficulty

import (
	"fmt"

	"github.com/jmylchreest/examiq/pkg/dataset"
)

// Column is the name of the column LabelFrame adds.
const Column = "Difficulty"

// Report describes one labeling run.
type Report struct {
	ScoreColumn string        `json:"score_column"`
	Thresholds  Thresholds    `json:"thresholds"`
	Counts      map[Label]int `json:"counts"`
	Labeled     int           `json:"labeled"`
	Skipped     int           `json:"skipped"`
}

// LabelOption configures LabelFrame.
type LabelOption func(*labelConfig)

type labelConfig struct {
	lowQ, highQ float64
	column      string
}

// WithQuantiles sets the cut points. Default: 0.33 and 0.66.
func WithQuantiles(lowQ, highQ float64) LabelOption {
	return func(c *labelConfig) {
		c.lowQ = lowQ
		c.highQ = highQ
	}
}

// WithColumn sets the name of the label column. Default: "Difficulty".
func WithColumn(name string) LabelOption {
	return func(c *labelConfig) { c.column = name }
}

// LabelFrame computes thresholds over the numeric values of scoreColumn and
// returns a new frame with a label column. Rows whose score is missing or
// not numeric get a null label and are counted as skipped.
func LabelFrame(frame *dataset.Frame, scoreColumn string, opts ...LabelOption) (*dataset.Frame, *Report, error) {
	cfg := &labelConfig{
		lowQ:   DefaultLowQuantile,
		highQ:  DefaultHighQuantile,
		column: Column,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	values, ok, err := frame.Floats(scoreColumn)
	if err != nil {
		return nil, nil, err
	}

	scores := make([]float64, 0, len(values))
	for i, v := range values {
		if ok[i] {
			scores = append(scores, v)
		}
	}

	th, err := ThresholdsAt(scores, cfg.lowQ, cfg.highQ)
	if err != nil {
		return nil, nil, fmt.Errorf("column %q: %w", scoreColumn, err)
	}

	report := &Report{
		ScoreColumn: scoreColumn,
		Thresholds:  th,
		Counts:      map[Label]int{Hard: 0, Medium: 0, Easy: 0},
	}

	labels := make([]*string, len(values))
	for i, v := range values {
		if !ok[i] {
			report.Skipped++
			continue
		}
		l := th.Label(v)
		labels[i] = dataset.Str(string(l))
		report.Counts[l]++
		report.Labeled++
	}

	out, err := frame.WithColumn(cfg.column, labels)
	if err != nil {
		return nil, nil, err
	}
	return out, report, nil
}

// LabelScores labels each score against thresholds computed over scores.
func LabelScores(scores []float64) ([]Label, Thresholds, error) {
	th, err := ComputeThresholds(scores)
	if err != nil {
		return nil, Thresholds{}, err
	}
	labels := make([]Label, len(scores))
	for i, s := range scores {
		labels[i] = th.Label(s)
	}
	return labels, th, nil
}
