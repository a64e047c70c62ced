// Package cli wires the cobra commands to the extractor and the export
// client.
package cli

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xtravels",
		Short: "xtravels - legacy travel data migration",
		Long: `xtravels extracts the legacy flight booking data into the CSV seed
files of the xtravels application and exports travels from a running
travel service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewMigrateCmd(), NewExportCmd())

	return rootCmd
}

// PrintError reports err and any hints attached to it.
func PrintError(w io.Writer, err error) {
	pterm.Fprintln(w, pterm.Error.Sprint(err.Error()))
	if hint := errors.FlattenHints(err); hint != "" {
		pterm.Fprintln(w, hint)
	}
}
