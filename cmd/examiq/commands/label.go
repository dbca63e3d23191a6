package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/examiq/internal/logger"
	"github.com/jmylchreest/examiq/pkg/dataset"
	"github.com/jmylchreest/examiq/pkg/difficulty"
)

// labelReport is everything the label command learns about a dataset.
type labelReport struct {
	*difficulty.Report
	Summary *difficulty.Summary   `json:"summary"`
	Dates   *difficulty.DateRange `json:"dates,omitempty"`
}

var labelCmd = &cobra.Command{
	Use:   "label <dataset.csv>",
	Short: "Label questions Hard, Medium or Easy by score quantiles",
	Long: `Compute score thresholds at two quantiles of the dataset and add a
"Difficulty" column: scores at or below the low threshold are Hard, at or
below the high threshold Medium, the rest Easy.

Thresholds are relative to the dataset, so the same score can land in a
different tier elsewhere. They are always included in the report.

Examples:
  # Default 33rd/66th percentile cut points
  examiq label questions.csv -o labeled.csv

  # Explicit score column and quartile cut points
  examiq label exam.csv --score-column Marks --low 0.25 --high 0.75 -o out.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runLabel,
}

func init() {
	rootCmd.AddCommand(labelCmd)

	flags := labelCmd.Flags()
	flags.String("score-column", "", "score column (default: first of Score, score, Marks, marks, Points, points)")
	flags.Float64("low", difficulty.DefaultLowQuantile, "quantile of the Hard/Medium threshold")
	flags.Float64("high", difficulty.DefaultHighQuantile, "quantile of the Medium/Easy threshold")
	flags.Int("bins", 10, "histogram bins in the report")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "", "output format: csv, json, jsonl, yaml (default: from extension, else csv)")
	flags.String("report", "", "write the label report to this file (default: stderr)")

	_ = viper.BindPFlag("difficulty.score_column", flags.Lookup("score-column"))
	_ = viper.BindPFlag("difficulty.low_quantile", flags.Lookup("low"))
	_ = viper.BindPFlag("difficulty.high_quantile", flags.Lookup("high"))
	_ = viper.BindPFlag("difficulty.bins", flags.Lookup("bins"))
}

func runLabel(cmd *cobra.Command, args []string) error {
	frame, err := readFrame(args[0])
	if err != nil {
		logger.Error("failed to read dataset", "error", err)
		return err
	}

	dc := cfg.Difficulty
	scoreColumn := dc.ScoreColumn
	if scoreColumn == "" {
		scoreColumn, err = difficulty.DetectScoreColumn(frame, dc.Candidates)
		if err != nil {
			logger.Error("no score column", "columns", frame.Columns(), "error", err)
			return err
		}
		logger.Debug("score column detected", "column", scoreColumn)
	}

	out, report, err := difficulty.LabelFrame(frame, scoreColumn,
		difficulty.WithQuantiles(dc.LowQuantile, dc.HighQuantile))
	if err != nil {
		logger.Error("labeling failed", "error", err)
		return err
	}

	logger.Info("labeling complete",
		"score_column", scoreColumn,
		"thresholds", report.Thresholds.String(),
		"hard", report.Counts[difficulty.Hard],
		"medium", report.Counts[difficulty.Medium],
		"easy", report.Counts[difficulty.Easy],
		"skipped", report.Skipped,
	)

	full := &labelReport{Report: report}
	full.Summary, err = summarizeScores(frame, scoreColumn, dc.Bins)
	if err != nil {
		return err
	}
	if col, ok := difficulty.DetectDateColumn(frame, nil); ok {
		full.Dates, err = difficulty.SummarizeDates(frame, col)
		if err != nil {
			return err
		}
		if full.Dates != nil {
			logger.Info("date range",
				"column", col,
				"earliest", full.Dates.Earliest.Format("2006-01-02"),
				"latest", full.Dates.Latest.Format("2006-01-02"),
				"invalid", full.Dates.Invalid,
			)
		}
	}

	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if err := writeFrame(outPath, format, out); err != nil {
		logger.Error("failed to write output", "error", err)
		return err
	}

	reportPath, _ := cmd.Flags().GetString("report")
	return writeReport(reportPath, "", full)
}

// summarizeScores summarizes the numeric values of column.
func summarizeScores(frame *dataset.Frame, column string, bins int) (*difficulty.Summary, error) {
	values, ok, err := frame.Floats(column)
	if err != nil {
		return nil, err
	}
	scores := make([]float64, 0, len(values))
	for i, v := range values {
		if ok[i] {
			scores = append(scores, v)
		}
	}
	return difficulty.Summarize(scores, bins)
}
