package difficulty

import (
	"errors"
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize(oneToTen(), 0)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"min", s.Min, 1},
		{"max", s.Max, 10},
		{"mean", s.Mean, 5.5},
		{"median", s.Median, 5.5},
		{"q1", s.Q1, 3.25},
		{"q3", s.Q3, 7.75},
		{"iqr", s.IQR, 4.5},
		{"whisker_low", s.WhiskerLow, 1},
		{"whisker_high", s.WhiskerHigh, 10},
	}
	for _, c := range checks {
		if !approx(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if s.Count != 10 || s.Outliers != 0 {
		t.Errorf("Count = %d, Outliers = %d", s.Count, s.Outliers)
	}

	if len(s.Histogram) != DefaultBins {
		t.Fatalf("len(Histogram) = %d, want %d", len(s.Histogram), DefaultBins)
	}
	for i, b := range s.Histogram {
		if b.Count != 1 {
			t.Errorf("bin %d count = %d, want 1", i, b.Count)
		}
	}
	if s.Histogram[DefaultBins-1].Upper != 10 {
		t.Errorf("last bin upper = %v, want 10", s.Histogram[DefaultBins-1].Upper)
	}
}

func TestSummarize_Outliers(t *testing.T) {
	s, err := Summarize([]float64{1, 2, 3, 4, 100}, 4)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if s.Outliers != 1 {
		t.Errorf("Outliers = %d, want 1", s.Outliers)
	}
	if s.WhiskerHigh != 4 {
		t.Errorf("WhiskerHigh = %v, want 4", s.WhiskerHigh)
	}

	total := 0
	for _, b := range s.Histogram {
		total += b.Count
	}
	if total != 5 {
		t.Errorf("histogram total = %d, want 5", total)
	}
}

func TestSummarize_Constant(t *testing.T) {
	s, err := Summarize([]float64{7, 7, 7}, 5)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(s.Histogram) != 1 || s.Histogram[0].Count != 3 {
		t.Errorf("Histogram = %+v, want one bin of 3", s.Histogram)
	}
	if s.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", s.StdDev)
	}
}

func TestSummarize_Empty(t *testing.T) {
	if _, err := Summarize(nil, 10); !errors.Is(err, ErrNoScores) {
		t.Errorf("error = %v, want ErrNoScores", err)
	}
}

func TestSummarize_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		bins    int
		wantErr error
	}{
		{"positive_inf", []float64{1, 2, math.Inf(1)}, 0, ErrNonFiniteScore},
		{"negative_inf", []float64{math.Inf(-1), 1}, 0, ErrNonFiniteScore},
		{"nan", []float64{1, math.NaN()}, 0, ErrNonFiniteScore},
		{"too_many_bins", []float64{1, 2}, MaxBins + 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Summarize(tt.scores, tt.bins)
			if err == nil {
				t.Fatalf("Summarize() = %+v, want error", s)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Summarize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummarize_MaxBins(t *testing.T) {
	s, err := Summarize(oneToTen(), MaxBins)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if len(s.Histogram) != MaxBins {
		t.Errorf("len(Histogram) = %d, want %d", len(s.Histogram), MaxBins)
	}
}
