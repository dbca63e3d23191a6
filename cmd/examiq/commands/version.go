package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/examiq/internal/output"
	"github.com/jmylchreest/examiq/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Version output never depends on configuration.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return nil
		}
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		w, err := output.NewWriter(cmd.OutOrStdout(), f)
		if err != nil {
			return err
		}
		if err := w.Write(version.Get()); err != nil {
			return err
		}
		return w.Close()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().String("format", "", "output format: json, yaml")
}
