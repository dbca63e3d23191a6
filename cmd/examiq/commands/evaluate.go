package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/examiq/internal/logger"
	"github.com/jmylchreest/examiq/pkg/difficulty"
	"github.com/jmylchreest/examiq/pkg/model/classifier"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <dataset.csv>",
	Short: "Compare classifier predictions with score-derived labels",
	Long: `Label a dataset by score quantiles, classify its text column and
print accuracy with per-class precision, recall and F1.

Rows without a numeric score have no true label and are left out.

Example:
  examiq evaluate questions.csv --model model.json --vocab tags.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	addModelFlags(evaluateCmd)

	flags := evaluateCmd.Flags()
	flags.String("column", "Body", "text column to classify")
	flags.String("score-column", "", "score column (default: detected)")
	flags.String("report", "", "write the evaluation as JSON or YAML to this file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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
	c, err := newClassifier(ctx, p)
	if err != nil {
		logger.Error("failed to load classifier", "error", err)
		return err
	}
	if c == nil {
		logError("%v", errNoModel)
		return errNoModel
	}

	scoreColumn, _ := cmd.Flags().GetString("score-column")
	if scoreColumn == "" {
		scoreColumn = cfg.Difficulty.ScoreColumn
	}
	if scoreColumn == "" {
		if scoreColumn, err = difficulty.DetectScoreColumn(frame, cfg.Difficulty.Candidates); err != nil {
			return err
		}
	}

	labeled, report, err := difficulty.LabelFrame(frame, scoreColumn,
		difficulty.WithQuantiles(cfg.Difficulty.LowQuantile, cfg.Difficulty.HighQuantile))
	if err != nil {
		logger.Error("labeling failed", "error", err)
		return err
	}
	logger.Info("true labels", "thresholds", report.Thresholds.String(), "skipped", report.Skipped)

	column, _ := cmd.Flags().GetString("column")
	predicted, err := c.PredictFrame(ctx, labeled, column)
	if err != nil {
		logger.Error("prediction failed", "error", err)
		return err
	}

	var yTrue, yPred []string
	for i := 0; i < predicted.Len(); i++ {
		truth := predicted.Value(i, difficulty.Column)
		if truth == nil {
			continue
		}
		yTrue = append(yTrue, *truth)
		yPred = append(yPred, *predicted.Value(i, classifier.PredictedColumn))
	}

	eval, err := classifier.Evaluate(yTrue, yPred, c.Classes()...)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, eval.String())

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		return writeReport(reportPath, "", eval)
	}
	return nil
}
