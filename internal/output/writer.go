// Package output writes reports and datasets as JSON, JSONL, YAML or CSV.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv" // datasets only
)

// ParseFormat maps a flag value to a Format. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// FormatForPath guesses a format from a file extension, falling back to def.
func FormatForPath(path string, def Format) Format {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return def
	}
	if f, err := ParseFormat(path[i+1:]); err == nil {
		return f
	}
	return def
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single result.
	Write(data any) error

	// WriteAll outputs multiple results.
	WriteAll(data []any) error

	// Flush ensures all data is written.
	Flush() error

	// Close releases resources.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	array  bool
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithArray makes JSON and YAML writers emit a list even for a single
// item. Used for dataset rows, where one row is still a table.
func WithArray() WriterOption {
	return func(c *writerConfig) {
		c.array = true
	}
}

// NewWriter creates a writer for the specified format. CSV is not a
// general purpose format; use WriteFrame for datasets.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return newJSONWriter(w, cfg), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return newYAMLWriter(w, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Create opens path for writing. An empty path or "-" means stdout, which
// is never closed.
func Create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}
