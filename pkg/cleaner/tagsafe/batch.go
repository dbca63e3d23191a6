package tagsafe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/examiq/pkg/dataset"
	"github.com/jmylchreest/examiq/pkg/vocab"
)

// CleanedSuffix is appended to a column name to form its cleaned column.
const CleanedSuffix = "_cleaned"

// CleanedColumn returns the name of the derived column for column.
func CleanedColumn(column string) string {
	return column + CleanedSuffix
}

// BatchReport summarizes cleaning one dataset column.
type BatchReport struct {
	Column        string        `json:"column"`
	OutputColumn  string        `json:"output_column"`
	Rows          int           `json:"rows"`
	Missing       int           `json:"missing"`
	Empty         int           `json:"empty"`
	TagsProtected int           `json:"tags_protected"`
	InputBytes    int           `json:"input_bytes"`
	OutputBytes   int           `json:"output_bytes"`
	Violations    int           `json:"violations"`
	Warnings      []Warning     `json:"warnings,omitempty"`
	Workers       int           `json:"workers"`
	Duration      time.Duration `json:"duration_ns"`

	Vocabulary *vocab.Report `json:"vocabulary,omitempty"`
}

// maxReportedWarnings caps the warnings kept in a BatchReport.
const maxReportedWarnings = 50

// CleanColumn cleans every value of column and returns a new frame with the
// extra column "<column>_cleaned". Row count and order are preserved and the
// input frame is not modified. Missing values become "".
//
// Records are independent and cleaned by up to the configured number of
// workers. Per-record problems are counted in the report; only a missing
// column or a cancelled ctx return an error.
func (p *Pipeline) CleanColumn(ctx context.Context, frame *dataset.Frame, column string) (*dataset.Frame, *BatchReport, error) {
	start := time.Now()

	values, err := frame.Column(column)
	if err != nil {
		return nil, nil, err
	}

	report := &BatchReport{
		Column:       column,
		OutputColumn: CleanedColumn(column),
		Rows:         len(values),
		Workers:      p.workers,
	}
	cleaned := make([]*string, len(values))
	var warnings []rowWarning

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, raw := range values {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			var res *Result
			if raw == nil {
				res = &Result{Stats: &Stats{}}
			} else {
				res = p.CleanWithStats(*raw)
			}
			cleaned[i] = dataset.Str(res.Content)

			mu.Lock()
			defer mu.Unlock()
			if raw == nil {
				report.Missing++
			}
			if res.Content == "" {
				report.Empty++
			}
			report.TagsProtected += res.Stats.TagsProtected
			report.InputBytes += res.Stats.InputBytes
			report.OutputBytes += res.Stats.OutputBytes
			if res.Violation() {
				report.Violations++
			}
			for _, w := range res.Warnings {
				warnings = append(warnings, rowWarning{row: i, w: w})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	report.Warnings = rowOrdered(warnings, maxReportedWarnings)

	out, err := frame.WithColumn(report.OutputColumn, cleaned)
	if err != nil {
		return nil, nil, err
	}

	report.Duration = time.Since(start)
	return out, report, nil
}

type rowWarning struct {
	row int
	w   Warning
}

// rowOrdered sorts warnings by row, keeps at most limit and prefixes each
// context with its row number.
func rowOrdered(warnings []rowWarning, limit int) []Warning {
	sort.SliceStable(warnings, func(a, b int) bool { return warnings[a].row < warnings[b].row })
	if len(warnings) > limit {
		warnings = warnings[:limit]
	}

	out := make([]Warning, len(warnings))
	for i, rw := range warnings {
		w := rw.w
		if w.Context != "" {
			w.Context = fmt.Sprintf("row %d: %s", rw.row, w.Context)
		} else {
			w.Context = fmt.Sprintf("row %d", rw.row)
		}
		out[i] = w
	}
	return out
}

// CleanDataset loads the vocabulary at vocabPath, builds a pipeline and
// cleans column. The vocabulary is read once per call and never cached.
func CleanDataset(ctx context.Context, frame *dataset.Frame, column, vocabPath string, vocabOpts []vocab.LoadOption, opts ...Option) (*dataset.Frame, *BatchReport, error) {
	m, vreport, err := vocab.Load(vocabPath, vocabOpts...)
	if err != nil {
		return nil, nil, err
	}

	out, report, err := New(m, opts...).CleanColumn(ctx, frame, column)
	if err != nil {
		return nil, nil, err
	}
	report.Vocabulary = vreport
	return out, report, nil
}
