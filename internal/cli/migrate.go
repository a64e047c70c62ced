package cli

import (
	"github.com/spf13/cobra"

	"github.com/BartekS5/xtravels-migrate/pkg/database"
)

type MigrateOptions struct {
	From string
}

func NewMigrateCmd() *cobra.Command {
	opts := &MigrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Extract the legacy sflight data into xtravels seed files",
		Long: `Deploys the legacy sflight database found under --from, runs the
Travels, Bookings and Bookings.Supplements mappings concurrently and writes
one <namespace>-<name>.csv file per mapping.

Every flag can also be set through an XTRAVELS_ environment variable,
e.g. XTRAVELS_DSN, or a .env file in the working directory.`,
		Example: `  xtravels migrate --from ../sflight
  xtravels migrate --from ../sflight --out db/data --driver postgres --dsn postgres://localhost/sflight`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runMigration(c, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.From, "from", "", "Home directory of the legacy sflight project")
	f.StringP("out", "o", ".", "Directory the seed files are written to")
	f.String("namespace", "", "Seed file namespace (default from the mapping set)")
	f.StringP("mapping", "m", "", "Mapping file (default built-in)")
	f.String("driver", database.DriverSQLite, "Source driver: sqlite, sqlserver, postgres, mysql or mongodb")
	f.String("dsn", "", "Source connection string")
	f.String("database", "sflight", "MongoDB database name")
	f.Bool("dry-run", false, "Query and transform without writing files")
	f.Bool("empty-header", false, "Write a header line for mappings without rows")
	return cmd
}
