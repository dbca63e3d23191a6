package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/examiq/internal/logger"
)

var cleanCmd = &cobra.Command{
	Use:   "clean <dataset.csv>",
	Short: "Clean a text column while protecting vocabulary terms",
	Long: `Clean every value of a dataset column and add "<column>_cleaned".

Each value is stripped of HTML, lowercased and normalized. Terms from the
vocabulary file keep their symbols: "C++" becomes "c++", not "c".

Examples:
  # Clean the Body column, write CSV
  examiq clean questions.csv --vocab tags.csv -o cleaned.csv

  # Clean the Title column, write JSONL to stdout
  examiq clean questions.csv --vocab tags.csv --column Title --format jsonl

  # Keep the cleaning report
  examiq clean questions.csv --vocab tags.csv -o out.csv --report report.json`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	flags.String("column", "Body", "text column to clean")
	flags.IntP("workers", "w", 0, "concurrent records (default: number of CPUs)")
	flags.Bool("strip-html", true, "strip HTML before normalizing (--strip-html=false for plain text)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "", "output format: csv, json, jsonl, yaml (default: from extension, else csv)")
	flags.String("report", "", "write the cleaning report to this file")

	_ = viper.BindPFlag("clean.column", flags.Lookup("column"))
	_ = viper.BindPFlag("clean.strip_html", flags.Lookup("strip-html"))
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if workers, _ := cmd.Flags().GetInt("workers"); workers > 0 {
		cfg.Clean.Workers = workers
	}

	frame, err := readFrame(args[0])
	if err != nil {
		logger.Error("failed to read dataset", "error", err)
		return err
	}

	p, err := newPipeline()
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		return err
	}

	logger.Info("cleaning", "column", cfg.Clean.Column, "rows", frame.Len(), "workers", cfg.Clean.Workers)
	out, report, err := p.CleanColumn(ctx, frame, cfg.Clean.Column)
	if err != nil {
		logger.Error("cleaning failed", "error", err)
		return err
	}

	logger.Info("cleaning complete",
		"rows", report.Rows,
		"missing", report.Missing,
		"empty", report.Empty,
		"tags_protected", report.TagsProtected,
		"input", humanize.Bytes(uint64(report.InputBytes)),
		"output", humanize.Bytes(uint64(report.OutputBytes)),
		"duration", report.Duration,
	)
	if report.Violations > 0 {
		logger.Warn("placeholders survived restoration", "records", report.Violations)
	}

	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	if err := writeFrame(outPath, format, out); err != nil {
		logger.Error("failed to write output", "error", err)
		return err
	}

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		return writeReport(reportPath, "", report)
	}
	return nil
}
