package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jmylchreest/examiq/internal/version"
	"github.com/jmylchreest/examiq/pkg/cleaner/tagsafe"
	"github.com/jmylchreest/examiq/pkg/difficulty"
	"github.com/jmylchreest/examiq/pkg/model/classifier"
)

// TextsRequest carries one or more texts. Text and Texts may be combined;
// Text is processed first.
type TextsRequest struct {
	Text  *string  `json:"text,omitempty"`
	Texts []string `json:"texts,omitempty"`
}

func (req *TextsRequest) all() []string {
	var out []string
	if req.Text != nil {
		out = append(out, *req.Text)
	}
	return append(out, req.Texts...)
}

// CleanResult is one cleaned text.
type CleanResult struct {
	Cleaned       string            `json:"cleaned"`
	TagsProtected int               `json:"tags_protected"`
	Warnings      []tagsafe.Warning `json:"warnings,omitempty"`
}

// LabelRequest carries scores to label.
type LabelRequest struct {
	Scores       []float64 `json:"scores"`
	LowQuantile  float64   `json:"low_quantile,omitempty"`
	HighQuantile float64   `json:"high_quantile,omitempty"`
	Bins         int       `json:"bins,omitempty"`
}

// LabelResponse holds one label per score and the thresholds used.
type LabelResponse struct {
	Labels     []difficulty.Label       `json:"labels"`
	Thresholds difficulty.Thresholds    `json:"thresholds"`
	Counts     map[difficulty.Label]int `json:"counts"`
	Summary    *difficulty.Summary      `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":           "ok",
		"vocabulary_terms": s.pipeline.Mapping().Len(),
		"classifier":       s.classifier != nil,
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, version.Get())
}

func (s *Server) handleVocabulary(w http.ResponseWriter, r *http.Request) {
	terms := s.pipeline.Mapping().Terms()
	items := make([]map[string]string, len(terms))
	for i, t := range terms {
		items[i] = map[string]string{"term": t.Text, "placeholder": t.Placeholder}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": len(items),
	})
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req TextsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	texts := req.all()
	if err := checkBatch(len(texts)); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := make([]CleanResult, len(texts))
	for i, text := range texts {
		res := s.pipeline.CleanWithStats(text)
		results[i] = CleanResult{
			Cleaned:       res.Content,
			TagsProtected: res.Stats.TagsProtected,
			Warnings:      res.Warnings,
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.classifier == nil {
		respondError(w, http.StatusServiceUnavailable, "no classifier loaded")
		return
	}

	var req TextsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	texts := req.all()
	if err := checkBatch(len(texts)); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	preds := make([]*classifier.Prediction, len(texts))
	for i, text := range texts {
		p, err := s.classifier.Predict(text)
		if err != nil {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("text %d: %v", i, err))
			return
		}
		preds[i] = p
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"predictions": preds,
		"classes":     s.classifier.Classes(),
	})
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := checkBatch(len(req.Scores)); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Bins < 0 || req.Bins > difficulty.MaxBins {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("bins must be between 0 and %d", difficulty.MaxBins))
		return
	}

	// Omitted quantiles fall back to the server defaults one by one.
	lowQ, highQ := s.lowQ, s.highQ
	if req.LowQuantile != 0 {
		lowQ = req.LowQuantile
	}
	if req.HighQuantile != 0 {
		highQ = req.HighQuantile
	}

	th, err := difficulty.ThresholdsAt(req.Scores, lowQ, highQ)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	summary, err := difficulty.Summarize(req.Scores, req.Bins)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := LabelResponse{
		Labels:     make([]difficulty.Label, len(req.Scores)),
		Thresholds: th,
		Counts:     map[difficulty.Label]int{difficulty.Hard: 0, difficulty.Medium: 0, difficulty.Easy: 0},
		Summary:    summary,
	}
	for i, score := range req.Scores {
		l := th.Label(score)
		resp.Labels[i] = l
		resp.Counts[l]++
	}
	respondJSON(w, http.StatusOK, resp)
}

var errEmptyBatch = errors.New("at least one item is required")

func checkBatch(n int) error {
	if n == 0 {
		return errEmptyBatch
	}
	if n > maxBatch {
		return fmt.Errorf("at most %d items per request, got %d", maxBatch, n)
	}
	return nil
}
