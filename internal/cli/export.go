package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/internal/export"
)

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "export json|csv",
		Short:     "Download the travels export of a running travel service",
		Example:   "  xtravels export csv --service-url http://localhost:4004/odata/v4/travel",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.FormatJSON), string(export.FormatCSV)},
		RunE: func(c *cobra.Command, args []string) error {
			format, err := export.ParseFormat(args[0])
			if err != nil {
				return errors.Mark(err, etl.ErrUsage)
			}
			return runExport(c, format)
		},
	}

	f := cmd.Flags()
	f.String("service-url", "", "Base URL of the travel service")
	f.StringP("out", "o", ".", "Directory the export is saved to")
	f.String("lang", "en", "Language of the result message (en, de)")
	return cmd
}
