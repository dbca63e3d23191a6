// Package difficulty assigns Hard, Medium and Easy labels to questions by
// comparing their scores against quantiles of the whole dataset.
//
// Thresholds are dataset-relative: the same raw score can land in a
// different tier in another dataset. Every labeling result therefore
// carries the thresholds it used.
package difficulty

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Label is a difficulty tier.
type Label string

// Difficulty tiers, from lowest score to highest.
const (
	Hard   Label = "Hard"
	Medium Label = "Medium"
	Easy   Label = "Easy"
)

// Labels lists the tiers in score order.
var Labels = []Label{Hard, Medium, Easy}

// Default cut points.
const (
	DefaultLowQuantile  = 0.33
	DefaultHighQuantile = 0.66
)

var (
	// ErrNoScores is returned when no numeric score is available.
	ErrNoScores = errors.New("no numeric scores")

	// ErrInvalidQuantile is returned for cut points outside 0 < low < high < 1.
	ErrInvalidQuantile = errors.New("invalid quantile")

	// ErrNonFiniteScore is returned when a score is infinite or NaN.
	ErrNonFiniteScore = errors.New("non-finite score")
)

// Thresholds holds the two score cut points and the quantiles they were
// computed at.
type Thresholds struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	LowQ  float64 `json:"low_quantile"`
	HighQ float64 `json:"high_quantile"`
}

// Label returns the tier for score. Scores at or below Low are Hard, at or
// below High Medium, and everything above Easy.
func (t Thresholds) Label(score float64) Label {
	switch {
	case score <= t.Low:
		return Hard
	case score <= t.High:
		return Medium
	default:
		return Easy
	}
}

// String returns a compact form, e.g. "q0.33=3.97 q0.66=6.94".
func (t Thresholds) String() string {
	return fmt.Sprintf("q%g=%g q%g=%g", t.LowQ, t.Low, t.HighQ, t.High)
}

// ComputeThresholds computes the default 33rd and 66th percentile cut
// points over scores.
func ComputeThresholds(scores []float64) (Thresholds, error) {
	return ThresholdsAt(scores, DefaultLowQuantile, DefaultHighQuantile)
}

// ThresholdsAt computes cut points at the lowQ and highQ quantiles.
func ThresholdsAt(scores []float64, lowQ, highQ float64) (Thresholds, error) {
	if err := ValidateQuantiles(lowQ, highQ); err != nil {
		return Thresholds{}, err
	}
	if len(scores) == 0 {
		return Thresholds{}, ErrNoScores
	}

	sorted := sortedCopy(scores)
	return Thresholds{
		Low:   quantileSorted(sorted, lowQ),
		High:  quantileSorted(sorted, highQ),
		LowQ:  lowQ,
		HighQ: highQ,
	}, nil
}

// ValidateQuantiles checks 0 < lowQ < highQ < 1.
func ValidateQuantiles(lowQ, highQ float64) error {
	if !(lowQ > 0 && lowQ < highQ && highQ < 1) {
		return fmt.Errorf("%w: need 0 < low < high < 1, got %g and %g", ErrInvalidQuantile, lowQ, highQ)
	}
	return nil
}

// Quantile returns the q-th quantile of values using linear interpolation
// between closest ranks. It returns NaN for empty input and does not modify
// values.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return quantileSorted(sortedCopy(values), q)
}

func quantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 || q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func sortedCopy(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	sort.Float64s(out)
	return out
}
