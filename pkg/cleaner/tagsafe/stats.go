package tagsafe

import (
	"fmt"
	"strings"
	"time"
)

// Stats captures what the pipeline did to one record.
type Stats struct {
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`

	// TagsProtected is the number of term occurrences swapped for placeholders.
	TagsProtected int `json:"tags_protected"`

	// Timing
	StripDuration     time.Duration `json:"strip_duration_ns"`
	ProtectDuration   time.Duration `json:"protect_duration_ns"`
	NormalizeDuration time.Duration `json:"normalize_duration_ns"`
	RestoreDuration   time.Duration `json:"restore_duration_ns"`
	TotalDuration     time.Duration `json:"total_duration_ns"`
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent())
	fmt.Fprintf(&sb, "Tags protected: %d\n", s.TagsProtected)
	fmt.Fprintf(&sb, "Timing: strip=%v, protect=%v, normalize=%v, restore=%v, total=%v\n",
		s.StripDuration, s.ProtectDuration, s.NormalizeDuration, s.RestoreDuration, s.TotalDuration)
	return sb.String()
}

// Warning phases.
const (
	PhaseStrip   = "strip"
	PhaseRestore = "restore"
)

// Warning represents a non-fatal issue encountered while cleaning.
type Warning struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of cleaning one record.
type Result struct {
	// Content is the cleaned text.
	Content string `json:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Violation reports whether a placeholder survived restoration.
func (r *Result) Violation() bool {
	for _, w := range r.Warnings {
		if w.Phase == PhaseRestore {
			return true
		}
	}
	return false
}
