package difficulty

import (
	"fmt"
	"math"
)

// Histogram bin counts.
const (
	DefaultBins = 10
	MaxBins     = 1000
)

// Bin is one histogram bucket covering [Lower, Upper). The last bin also
// includes its upper edge.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Summary describes a score distribution: the numbers behind metric cards,
// a histogram and a boxplot.
type Summary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`

	// Whiskers follow the 1.5 * IQR rule, clamped to the data.
	WhiskerLow  float64 `json:"whisker_low"`
	WhiskerHigh float64 `json:"whisker_high"`
	Outliers    int     `json:"outliers"`

	Histogram []Bin `json:"histogram"`
}

// Summarize computes summary statistics and a histogram with bins equal
// width buckets. bins < 1 means DefaultBins; more than MaxBins is an error.
func Summarize(scores []float64, bins int) (*Summary, error) {
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	if bins > MaxBins {
		return nil, fmt.Errorf("%d histogram bins, at most %d allowed", bins, MaxBins)
	}
	if bins < 1 {
		bins = DefaultBins
	}
	for _, v := range scores {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: %v", ErrNonFiniteScore, v)
		}
	}

	sorted := sortedCopy(scores)
	n := len(sorted)
	s := &Summary{
		Count:  n,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q3:     quantileSorted(sorted, 0.75),
	}
	s.IQR = s.Q3 - s.Q1

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	s.Mean = sum / float64(n)

	if n > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - s.Mean
			ss += d * d
		}
		s.StdDev = math.Sqrt(ss / float64(n-1))
	}

	lowFence := s.Q1 - 1.5*s.IQR
	highFence := s.Q3 + 1.5*s.IQR
	s.WhiskerLow, s.WhiskerHigh = s.Max, s.Min
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			s.Outliers++
			continue
		}
		s.WhiskerLow = math.Min(s.WhiskerLow, v)
		s.WhiskerHigh = math.Max(s.WhiskerHigh, v)
	}

	s.Histogram = histogram(sorted, bins)
	return s, nil
}

func histogram(sorted []float64, bins int) []Bin {
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(sorted)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range sorted {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out
}
