package tagsafe

import (
	"runtime"
	"time"

	"github.com/jmylchreest/examiq/pkg/cleaner"
	"github.com/jmylchreest/examiq/pkg/vocab"
)

// Pipeline cleans free text while keeping vocabulary terms intact. It
// implements cleaner.Cleaner.
//
// A Pipeline holds no mutable state after New returns and may be shared
// by concurrent goroutines.
type Pipeline struct {
	mapping    *vocab.Mapping
	strip      cleaner.Cleaner
	protector  *Protector
	normalizer cleaner.Cleaner
	restorer   *Restorer
	chain      *cleaner.ChainCleaner
	workers    int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers sets how many records CleanColumn processes concurrently.
// Values below 1 mean one worker. Default: runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithStripper replaces the HTML stripping stage, e.g. with
// cleaner.NewNoop() for columns that are already plain text.
func WithStripper(c cleaner.Cleaner) Option {
	return func(p *Pipeline) { p.strip = c }
}

// New creates a pipeline protecting the terms of m. A nil mapping protects
// nothing.
func New(m *vocab.Mapping, opts ...Option) *Pipeline {
	if m == nil {
		m = vocab.Empty()
	}

	p := &Pipeline{
		mapping:    m,
		strip:      cleaner.NewHTMLText(),
		protector:  NewProtector(m),
		normalizer: cleaner.NewNormalizer(),
		restorer:   NewRestorer(m),
		workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.chain = cleaner.NewChain(p.strip, p.protector, p.normalizer, p.restorer)
	return p
}

// Name returns the stage chain, e.g. "tagsafe:chain(html-text->protect->normalize->restore)".
func (p *Pipeline) Name() string {
	return "tagsafe:" + p.chain.Name()
}

// Mapping returns the vocabulary mapping the pipeline protects.
func (p *Pipeline) Mapping() *vocab.Mapping {
	return p.mapping
}

// Clean implements cleaner.Cleaner.
func (p *Pipeline) Clean(text string) (string, error) {
	return p.chain.Clean(text)
}

// CleanText runs the four stages on raw and returns the cleaned text.
func (p *Pipeline) CleanText(raw string) string {
	return p.CleanWithStats(raw).Content
}

// CleanNullable cleans a possibly missing value. A nil value yields "".
func (p *Pipeline) CleanNullable(raw *string) string {
	if raw == nil {
		return ""
	}
	return p.CleanText(*raw)
}

// CleanWithStats runs the four stages on raw and reports per-stage timing,
// the number of protected terms and any warnings.
func (p *Pipeline) CleanWithStats(raw string) *Result {
	start := time.Now()
	result := &Result{Stats: &Stats{InputBytes: len(raw)}}

	t := time.Now()
	text, ok := p.stripText(raw)
	result.Stats.StripDuration = time.Since(t)
	if !ok {
		result.AddWarning(PhaseStrip, "HTML parse failed, tags stripped by pattern", "")
	}

	t = time.Now()
	text, result.Stats.TagsProtected = p.protector.Protect(text)
	result.Stats.ProtectDuration = time.Since(t)

	t = time.Now()
	text, _ = p.normalizer.Clean(text)
	result.Stats.NormalizeDuration = time.Since(t)

	t = time.Now()
	text = p.restorer.Restore(text)
	result.Stats.RestoreDuration = time.Since(t)

	if Residual(text) {
		result.AddWarning(PhaseRestore, "placeholder survived restoration", text)
	}

	result.Content = text
	result.Stats.OutputBytes = len(text)
	result.Stats.TotalDuration = time.Since(start)
	return result
}

func (p *Pipeline) stripText(raw string) (string, bool) {
	if _, isHTML := p.strip.(*cleaner.HTMLText); isHTML {
		return cleaner.StripHTML(raw)
	}
	text, err := p.strip.Clean(raw)
	if err != nil {
		return raw, false
	}
	return text, true
}

// Verify checks that every placeholder of the mapping survives the
// normalizer unchanged and restores to its term. It returns the terms
// that do not round-trip; an empty result means the mapping is safe.
func (p *Pipeline) Verify() []vocab.Term {
	var broken []vocab.Term
	for _, t := range p.mapping.Terms() {
		normalized, _ := p.normalizer.Clean(t.Placeholder)
		if normalized != t.Placeholder || p.restorer.Restore(normalized) != t.Text {
			broken = append(broken, t)
		}
	}
	return broken
}
