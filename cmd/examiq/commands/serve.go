package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/examiq/internal/api"
	"github.com/jmylchreest/examiq/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cleaning, labeling and prediction over HTTP",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health       liveness and loaded components
  GET  /version      build information
  GET  /vocabulary   protected terms and their placeholders
  POST /clean        {"text": "..."} or {"texts": [...]}
  POST /label        {"scores": [...], "low_quantile": 0.33, "high_quantile": 0.66}
  POST /predict      {"text": "..."} or {"texts": [...]}, needs a model

Example:
  examiq serve --vocab tags.csv --model model.json --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addModelFlags(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("max-body", "1MB", "maximum request body size (e.g. 512KB, 4MiB)")
	flags.Duration("read-timeout", 0, "request read timeout (default 15s)")
	flags.Duration("write-timeout", 0, "response write timeout (default 30s)")
	flags.StringSlice("cors-origin", nil, "allowed CORS origin (can be repeated)")

	_ = viper.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("server.max_body", flags.Lookup("max-body"))
	_ = viper.BindPFlag("server.cors_origins", flags.Lookup("cors-origin"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sc := cfg.Server
	if d, _ := cmd.Flags().GetDuration("read-timeout"); d > 0 {
		sc.ReadTimeout = d
	}
	if d, _ := cmd.Flags().GetDuration("write-timeout"); d > 0 {
		sc.WriteTimeout = d
	}
	maxBody, err := sc.MaxBodyBytes()
	if err != nil {
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
		logger.Warn("no model configured, POST /predict is disabled")
	}

	opts := []api.Option{
		api.WithMaxBody(maxBody),
		api.WithCORSOrigins(sc.CORSOrigins...),
		api.WithQuantiles(cfg.Difficulty.LowQuantile, cfg.Difficulty.HighQuantile),
	}
	if c != nil {
		opts = append(opts, api.WithClassifier(c))
	}
	srv := api.NewServer(p, opts...)

	return api.Run(ctx, sc.Addr, srv.Router(), sc.ReadTimeout, sc.WriteTimeout)
}
