package classifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMismatchedLabels is returned when true and predicted labels differ in
// length or are empty.
var ErrMismatchedLabels = errors.New("mismatched label slices")

// ClassMetrics holds per-class scores.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes predictions against known labels.
type Evaluation struct {
	Samples        int            `json:"samples"`
	Accuracy       float64        `json:"accuracy"`
	Classes        []ClassMetrics `json:"classes"`
	MacroPrecision float64        `json:"macro_precision"`
	MacroRecall    float64        `json:"macro_recall"`
	MacroF1        float64        `json:"macro_f1"`

	// Confusion[i][j] counts samples of Classes[i] predicted as Classes[j].
	Confusion [][]int `json:"confusion"`
}

// Evaluate compares predicted labels with true labels. Classes are taken
// from labels when given, otherwise from the sorted union of both slices.
// Undefined ratios (no predictions or no support) count as 0.
func Evaluate(yTrue, yPred []string, labels ...string) (*Evaluation, error) {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("%w: %d true, %d predicted", ErrMismatchedLabels, len(yTrue), len(yPred))
	}
	if len(labels) == 0 {
		labels = unionSorted(yTrue, yPred)
	}

	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	confusion := make([][]int, len(labels))
	for i := range confusion {
		confusion[i] = make([]int, len(labels))
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
		t, tok := idx[yTrue[i]]
		p, pok := idx[yPred[i]]
		if tok && pok {
			confusion[t][p]++
		}
	}

	ev := &Evaluation{
		Samples:   len(yTrue),
		Accuracy:  float64(correct) / float64(len(yTrue)),
		Confusion: confusion,
	}

	for i, l := range labels {
		tp := confusion[i][i]
		predicted, support := 0, 0
		for j := range labels {
			predicted += confusion[j][i]
			support += confusion[i][j]
		}

		m := ClassMetrics{Class: l, Support: support}
		m.Precision = ratio(tp, predicted)
		m.Recall = ratio(tp, support)
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		ev.Classes = append(ev.Classes, m)

		ev.MacroPrecision += m.Precision
		ev.MacroRecall += m.Recall
		ev.MacroF1 += m.F1
	}
	n := float64(len(labels))
	ev.MacroPrecision /= n
	ev.MacroRecall /= n
	ev.MacroF1 /= n

	return ev, nil
}

// String renders a classification report table.
func (e *Evaluation) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	for _, m := range e.Classes {
		fmt.Fprintf(&sb, "%-12s %9.2f %9.2f %9.2f %9d\n", m.Class, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&sb, "\n%-12s %9s %9s %9.2f %9d\n", "accuracy", "", "", e.Accuracy, e.Samples)
	fmt.Fprintf(&sb, "%-12s %9.2f %9.2f %9.2f %9d\n", "macro avg", e.MacroPrecision, e.MacroRecall, e.MacroF1, e.Samples)
	return sb.String()
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
