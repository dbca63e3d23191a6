package classifier

import (
	"math"
)

// Model is a linear classifier: multinomial logistic regression, or binary
// logistic regression when Coef has a single row.
type Model struct {
	Classes   []string    `json:"classes" validate:"required,min=2,unique,dive,required"`
	Coef      [][]float64 `json:"coef" validate:"required,min=1"`
	Intercept []float64   `json:"intercept" validate:"required,min=1"`
}

// Binary reports whether the model has a single decision function.
func (m *Model) Binary() bool {
	return len(m.Coef) == 1
}

// DecisionFunction returns one score per coefficient row.
func (m *Model) DecisionFunction(x Vector) []float64 {
	scores := make([]float64, len(m.Coef))
	for k, row := range m.Coef {
		s := m.Intercept[k]
		for col, val := range x {
			if col >= 0 && col < len(row) {
				s += row[col] * val
			}
		}
		scores[k] = s
	}
	return scores
}

// PredictProba returns one probability per class, in Classes order.
func (m *Model) PredictProba(x Vector) []float64 {
	scores := m.DecisionFunction(x)
	if m.Binary() {
		p := sigmoid(scores[0])
		return []float64{1 - p, p}
	}
	return softmax(scores)
}

// Predict returns the most probable class and the class probabilities.
// Ties go to the earlier class.
func (m *Model) Predict(x Vector) (string, []float64) {
	proba := m.PredictProba(x)
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return m.Classes[best], proba
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
