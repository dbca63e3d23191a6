package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/examiq/internal/logger"
	"github.com/jmylchreest/examiq/internal/output"
)

var errNoModel = errors.New("no model configured: use --model or --model-name")

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Classify question difficulty with a trained artifact",
	Long: `Clean question text with the tag-safe pipeline and classify it with a
bag-of-words logistic regression artifact.

Texts are taken from the arguments, or from a dataset column with --input.

Examples:
  # Classify a single question
  examiq predict --model model.json --vocab tags.csv "What is a C++ template?"

  # Add a Predicted column to a dataset
  examiq predict --model model.json --vocab tags.csv --input questions.csv -o predicted.csv

  # Resolve the artifact through a registry index
  examiq predict --model-name difficulty-bow --registry models.json "Reverse a list in Python"`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	addModelFlags(predictCmd)

	flags := predictCmd.Flags()
	flags.StringP("input", "i", "", "dataset CSV to classify instead of arguments")
	flags.String("column", "Body", "text column of --input")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "", "output format: csv, json, jsonl, yaml")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

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

	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")

	if input, _ := cmd.Flags().GetString("input"); input != "" {
		column, _ := cmd.Flags().GetString("column")
		frame, err := readFrame(input)
		if err != nil {
			logger.Error("failed to read dataset", "error", err)
			return err
		}
		out, err := c.PredictFrame(ctx, frame, column)
		if err != nil {
			logger.Error("prediction failed", "error", err)
			return err
		}
		return writeFrame(outPath, format, out)
	}

	if len(args) == 0 {
		return cmd.Help()
	}

	preds := make([]any, len(args))
	for i, text := range args {
		pred, err := c.Predict(text)
		if err != nil {
			return err
		}
		preds[i] = pred
	}
	return writePredictions(outPath, format, preds)
}

func writePredictions(path, formatFlag string, preds []any) error {
	format := output.FormatForPath(path, output.FormatJSON)
	if formatFlag != "" {
		f, err := output.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		format = f
	}

	dest, err := output.Create(path)
	if err != nil {
		return err
	}
	defer dest.Close()

	w, err := output.NewWriter(dest, format, output.WithPretty(true))
	if err != nil {
		return err
	}
	if err := w.WriteAll(preds); err != nil {
		return err
	}
	return w.Close()
}

// addModelFlags registers the artifact selection flags shared by predict,
// evaluate and serve.
func addModelFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("model", "", "path to a classifier artifact (JSON)")
	flags.String("model-name", "", "artifact name or name@version resolved through --registry")
	flags.String("registry", "", "registry index file")
	flags.String("cache-dir", "", "artifact download cache (default $HOME/.cache/examiq/models)")
}

// bindModelFlags binds the artifact flags of the running command. Several
// commands define them, so binding happens at run time rather than in init.
func bindModelFlags(cmd *cobra.Command) {
	if cmd.Flags().Lookup("model") == nil {
		return
	}
	flags := cmd.Flags()
	_ = viper.BindPFlag("model.path", flags.Lookup("model"))
	_ = viper.BindPFlag("model.name", flags.Lookup("model-name"))
	_ = viper.BindPFlag("model.registry", flags.Lookup("registry"))
	_ = viper.BindPFlag("model.cache_dir", flags.Lookup("cache-dir"))
}
