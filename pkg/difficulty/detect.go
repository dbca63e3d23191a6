package difficulty

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/jmylchreest/examiq/pkg/dataset"
)

// ScoreCandidates are the column names tried, in order, when no score
// column is configured.
var ScoreCandidates = []string{"Score", "score", "Marks", "marks", "Points", "points"}

// DateCandidates are the column names tried, in order, for a creation date.
var DateCandidates = []string{"CreationDate", "Date", "date", "created_at"}

// ErrNoScoreColumn is returned when none of the candidate columns exist.
var ErrNoScoreColumn = errors.New("no score column")

// DetectScoreColumn returns the first candidate present in frame. With no
// candidates, ScoreCandidates is used.
func DetectScoreColumn(frame *dataset.Frame, candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = ScoreCandidates
	}
	for _, name := range candidates {
		if frame.HasColumn(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrNoScoreColumn, strings.Join(candidates, ", "))
}

// DetectDateColumn returns the first candidate present in frame. With no
// candidates, DateCandidates is used.
func DetectDateColumn(frame *dataset.Frame, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		candidates = DateCandidates
	}
	for _, name := range candidates {
		if frame.HasColumn(name) {
			return name, true
		}
	}
	return "", false
}

// DateRange is the span of the parseable dates in a column.
type DateRange struct {
	Column   string    `json:"column"`
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
	Parsed   int       `json:"parsed"`
	Invalid  int       `json:"invalid"`
}

// ParseDates parses every value of column in any common date layout.
// Missing or unparseable values have ok[i] == false.
func ParseDates(frame *dataset.Frame, column string) (dates []time.Time, ok []bool, err error) {
	col, err := frame.Column(column)
	if err != nil {
		return nil, nil, err
	}

	dates = make([]time.Time, len(col))
	ok = make([]bool, len(col))
	for i, v := range col {
		if v == nil {
			continue
		}
		t, perr := dateparse.ParseIn(strings.TrimSpace(*v), time.UTC)
		if perr != nil {
			continue
		}
		dates[i] = t
		ok[i] = true
	}
	return dates, ok, nil
}

// SummarizeDates returns the range of the parseable dates in column. It
// returns nil when no value parses.
func SummarizeDates(frame *dataset.Frame, column string) (*DateRange, error) {
	dates, ok, err := ParseDates(frame, column)
	if err != nil {
		return nil, err
	}

	r := &DateRange{Column: column}
	for i, d := range dates {
		if !ok[i] {
			if frame.Value(i, column) != nil {
				r.Invalid++
			}
			continue
		}
		if r.Parsed == 0 || d.Before(r.Earliest) {
			r.Earliest = d
		}
		if r.Parsed == 0 || d.After(r.Latest) {
			r.Latest = d
		}
		r.Parsed++
	}
	if r.Parsed == 0 {
		return nil, nil
	}
	return r, nil
}
