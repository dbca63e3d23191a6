// Package commands implements the CLI commands for examiq.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/examiq/internal/config"
	"github.com/jmylchreest/examiq/internal/logger"
)

// cfg holds the settings loaded before every command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "examiq",
	Short: "Tag-safe cleaning and difficulty labeling for exam question datasets",
	Long: `examiq cleans question text without destroying technical terms,
labels questions by difficulty and classifies new questions.

Terms such as "c++", "c#" or "node.js" are read from a vocabulary file
and survive normalization intact.

Examples:
  # Clean the Body column of a dataset
  examiq clean questions.csv --vocab tags.csv -o cleaned.csv

  # Label questions by score quantiles
  examiq label questions.csv -o labeled.csv

  # Classify a question with a trained artifact
  examiq predict --model model.json --vocab tags.csv "How do templates work in C++?"

  # Serve the HTTP API
  examiq serve --vocab tags.csv --model model.json`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.String("config", "", "config file (default $HOME/.examiq.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "suppress progress output")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "write logs as JSON")

	// Shared dataset and vocabulary settings
	flags.String("vocab", "", "vocabulary CSV of protected terms (first column)")
	flags.String("vocab-encoding", "latin1", "vocabulary encoding: auto, utf-8, latin1")
	flags.String("encoding", "auto", "dataset encoding: auto, utf-8, latin1")

	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("vocabulary.path", flags.Lookup("vocab"))
	_ = viper.BindPFlag("vocabulary.encoding", flags.Lookup("vocab-encoding"))
	_ = viper.BindPFlag("dataset.encoding", flags.Lookup("encoding"))
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	bindModelFlags(cmd)

	v := viper.GetViper()
	if err := config.Setup(v, cfgFile); err != nil {
		logError("%v", err)
		return err
	}

	c, err := config.Load(v)
	if err != nil {
		logError("%v", err)
		return err
	}
	cfg = c

	if err := logger.Init(logger.Options{
		Level: cfg.Log.Level,
		Debug: v.GetBool("debug"),
		Quiet: v.GetBool("quiet"),
		JSON:  cfg.Log.JSON,
	}); err != nil {
		logError("%v", err)
		return err
	}

	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "file", used)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
