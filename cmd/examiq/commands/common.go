package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/examiq/internal/logger"
	"github.com/jmylchreest/examiq/internal/output"
	"github.com/jmylchreest/examiq/pkg/cleaner"
	"github.com/jmylchreest/examiq/pkg/cleaner/tagsafe"
	"github.com/jmylchreest/examiq/pkg/dataset"
	"github.com/jmylchreest/examiq/pkg/model/classifier"
	"github.com/jmylchreest/examiq/pkg/model/registry"
	"github.com/jmylchreest/examiq/pkg/vocab"
)

// readFrame reads a CSV dataset. "-" reads stdin.
func readFrame(path string) (*dataset.Frame, error) {
	opts := []dataset.ReadOption{dataset.WithEncoding(dataset.Encoding(cfg.Dataset.Encoding))}

	var (
		frame *dataset.Frame
		err   error
	)
	if path == "-" {
		frame, err = dataset.ParseCSV(os.Stdin, opts...)
	} else {
		frame, err = dataset.ReadCSV(path, opts...)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", "path", path, "rows", frame.Len(), "columns", frame.Columns())
	return frame, nil
}

// loadVocabulary loads the configured vocabulary. Without a path the
// pipeline protects nothing.
func loadVocabulary() (*vocab.Mapping, error) {
	vc := cfg.Vocabulary
	if vc.Path == "" {
		logger.Warn("no vocabulary configured, no terms will be protected")
		return vocab.Empty(), nil
	}

	opts := []vocab.LoadOption{vocab.WithEncoding(dataset.Encoding(vc.Encoding))}
	if vc.NoHeader {
		opts = append(opts, vocab.WithoutHeader())
	}
	if vc.AllowEmpty {
		opts = append(opts, vocab.AllowEmpty())
	}

	m, report, err := vocab.Load(vc.Path, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("vocabulary loaded",
		"path", vc.Path,
		"terms", report.Kept,
		"duplicates", report.Duplicates,
		"blank", report.Blank,
	)
	return m, nil
}

// pipelineOptions maps the clean settings to pipeline options.
func pipelineOptions() []tagsafe.Option {
	opts := []tagsafe.Option{tagsafe.WithWorkers(cfg.Clean.Workers)}
	if !cfg.Clean.StripHTML {
		opts = append(opts, tagsafe.WithStripper(cleaner.NewNoop()))
	}
	return opts
}

// newPipeline loads the vocabulary and builds a cleaning pipeline.
func newPipeline() (*tagsafe.Pipeline, error) {
	m, err := loadVocabulary()
	if err != nil {
		return nil, err
	}
	p := tagsafe.New(m, pipelineOptions()...)
	if broken := p.Verify(); len(broken) > 0 {
		return nil, fmt.Errorf("%d placeholders do not survive normalization", len(broken))
	}
	logger.Debug("pipeline ready", "stages", p.Name(), "workers", cfg.Clean.Workers)
	return p, nil
}

// loadArtifact loads the configured classifier artifact. It returns nil
// when no model is configured.
func loadArtifact(ctx context.Context) (*classifier.Artifact, error) {
	mc := cfg.Model
	switch {
	case mc.Path != "":
		logger.Debug("loading artifact", "path", mc.Path)
		return classifier.LoadArtifact(mc.Path)
	case mc.Name != "":
		idx, err := registry.OpenIndex(mc.Registry, registry.WithCacheDir(mc.CacheDir))
		if err != nil {
			return nil, err
		}
		logger.Debug("resolving artifact", "ref", mc.Name, "registry", mc.Registry)
		return registry.LoadArtifact(ctx, idx, mc.Name)
	}
	return nil, nil
}

// newClassifier builds a classifier around p, or returns nil when no
// model is configured.
func newClassifier(ctx context.Context, p *tagsafe.Pipeline) (*classifier.Classifier, error) {
	a, err := loadArtifact(ctx)
	if err != nil || a == nil {
		return nil, err
	}
	c, err := classifier.New(p, a, classifier.WithWorkers(cfg.Clean.Workers))
	if err != nil {
		return nil, err
	}
	logger.Info("classifier loaded",
		"name", a.Name,
		"version", a.Version,
		"classes", a.Model.Classes,
		"features", len(a.Vectorizer.Vocabulary),
	)
	return c, nil
}

// writeFrame writes frame to path. The format comes from formatFlag, then
// the file extension, then CSV.
func writeFrame(path, formatFlag string, frame *dataset.Frame) error {
	format := output.FormatForPath(path, output.FormatCSV)
	if formatFlag != "" {
		f, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	w, err := output.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteFrame(w, format, frame, output.WithPretty(true)); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if path != "" && path != "-" {
		if info, err := os.Stat(path); err == nil {
			logInfo("Wrote %d rows to %s (%s)", frame.Len(), path, humanize.Bytes(uint64(info.Size())))
		}
	}
	return nil
}

// writeReport writes a report to stderr, or to path when set.
func writeReport(path, formatFlag string, report any) error {
	format := output.FormatForPath(path, output.FormatJSON)
	if formatFlag != "" {
		f, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	dest := os.Stderr
	if path != "" {
		f, err := os.Create(path) //#nosec G304
		if err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		defer f.Close()
		dest = f
	}

	w, err := output.NewWriter(dest, format, output.WithPretty(true))
	if err != nil {
		return err
	}
	if err := w.Write(report); err != nil {
		return err
	}
	return w.Flush()
}
