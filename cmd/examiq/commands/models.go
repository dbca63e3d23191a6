package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/examiq/internal/logger"
	"github.com/jmylchreest/examiq/internal/output"
	"github.com/jmylchreest/examiq/pkg/model/registry"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the artifacts published in a registry index",
	Long: `List the classifier artifacts in a registry index.

With --fetch every artifact is downloaded into the cache and verified, and
the listing includes the local path of each one.`,
	Example: `  examiq models --registry models.json
  examiq models --registry models.json --fetch --format yaml`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	flags := modelsCmd.Flags()
	flags.String("registry", "", "registry index file (default model.registry)")
	flags.String("cache-dir", "", "artifact download cache (default $HOME/.cache/examiq/models)")
	flags.Bool("fetch", false, "download and verify every artifact")
	flags.String("format", "json", "output format: json, jsonl, yaml")
}

type modelListing struct {
	registry.Entry `yaml:",inline"`
	Local          string `json:"local,omitempty" yaml:"local,omitempty"`
}

func runModels(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	index, _ := flags.GetString("registry")
	if index == "" {
		index = cfg.Model.Registry
	}
	if index == "" {
		return errors.New("no registry index: use --registry or model.registry")
	}
	cacheDir, _ := flags.GetString("cache-dir")
	if cacheDir == "" {
		cacheDir = cfg.Model.CacheDir
	}
	fetch, _ := flags.GetBool("fetch")

	idx, err := registry.OpenIndex(index, registry.WithCacheDir(cacheDir))
	if err != nil {
		return err
	}
	entries, err := idx.Entries(cmd.Context())
	if err != nil {
		return err
	}

	listing := make([]any, 0, len(entries))
	for _, e := range entries {
		item := modelListing{Entry: e}
		if fetch {
			path, _, err := idx.Fetch(cmd.Context(), e.Ref())
			if err != nil {
				return err
			}
			logger.Info("artifact ready", "ref", e.Ref(), "path", path)
			item.Local = path
		}
		listing = append(listing, item)
	}

	formatFlag, _ := flags.GetString("format")
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	w, err := output.NewWriter(cmd.OutOrStdout(), format, output.WithPretty(true), output.WithArray())
	if err != nil {
		return err
	}
	if err := w.WriteAll(listing); err != nil {
		return err
	}
	return w.Close()
}
