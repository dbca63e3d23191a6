package vocab

import (
	"fmt"
	"io"

	"github.com/jmylchreest/examiq/pkg/dataset"
)

// LoadOption configures loading a vocabulary file.
type LoadOption func(*loadConfig)

type loadConfig struct {
	encoding   dataset.Encoding
	noHeader   bool
	allowEmpty bool
}

// WithEncoding sets the file encoding. Default: Latin-1, which accepts any
// byte sequence.
func WithEncoding(e dataset.Encoding) LoadOption {
	return func(c *loadConfig) { c.encoding = e }
}

// WithoutHeader treats the first row as a term instead of a column name.
func WithoutHeader() LoadOption {
	return func(c *loadConfig) { c.noHeader = true }
}

// AllowEmpty makes a source with zero usable terms load as an empty
// Mapping instead of failing with ErrEmptyVocabulary.
func AllowEmpty() LoadOption {
	return func(c *loadConfig) { c.allowEmpty = true }
}

func (c *loadConfig) readOptions() []dataset.ReadOption {
	opts := []dataset.ReadOption{
		dataset.WithEncoding(c.encoding),
		// Only blank cells are missing; "null" or "none" could be real terms.
		dataset.WithNAValues(""),
	}
	if c.noHeader {
		opts = append(opts, dataset.WithoutHeader())
	}
	return opts
}

func newLoadConfig(opts []LoadOption) *loadConfig {
	cfg := &loadConfig{encoding: dataset.EncodingLatin1}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a CSV vocabulary file. The first column's non-missing values
// are the terms; other columns and the header name are ignored.
func Load(path string, opts ...LoadOption) (*Mapping, *Report, error) {
	cfg := newLoadConfig(opts)
	frame, err := dataset.ReadCSV(path, cfg.readOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("load vocabulary: %w: %w", ErrDataSource, err)
	}
	return fromFrame(frame, cfg, path)
}

// FromReader reads a CSV vocabulary from r, as Load does for files.
func FromReader(r io.Reader, opts ...LoadOption) (*Mapping, *Report, error) {
	cfg := newLoadConfig(opts)
	frame, err := dataset.ParseCSV(r, cfg.readOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("load vocabulary: %w: %w", ErrDataSource, err)
	}
	return fromFrame(frame, cfg, "reader")
}

func fromFrame(frame *dataset.Frame, cfg *loadConfig, source string) (*Mapping, *Report, error) {
	var raw []string
	for _, cell := range frame.FirstColumn() {
		if cell != nil {
			raw = append(raw, *cell)
		}
	}

	m, report := New(raw)
	report.Rows = frame.Len()
	report.Blank = frame.Len() - len(raw) + report.Blank

	if m.Len() == 0 && !cfg.allowEmpty {
		return nil, report, fmt.Errorf("%s: %w: %w", source, ErrDataSource, ErrEmptyVocabulary)
	}
	return m, report, nil
}
