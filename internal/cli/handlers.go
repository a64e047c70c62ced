package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/BartekS5/xtravels-migrate/internal/config"
	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/internal/export"
	"github.com/BartekS5/xtravels-migrate/internal/source"
	"github.com/BartekS5/xtravels-migrate/pkg/logger"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, errors.Mark(err, etl.ErrUsage)
	}
	if err := logger.Init(cfg.LogJSON, cfg.Debug); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}
	return cfg, nil
}

func runMigration(cmd *cobra.Command, opts *MigrateOptions) error {
	if err := etl.CheckSourceDir(opts.From); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	set, err := config.LoadMapping(cfg.MappingFile)
	if err != nil {
		return errors.Mark(err, etl.ErrUsage)
	}
	mappings, err := etl.Compile(set)
	if err != nil {
		return errors.Mark(err, etl.ErrUsage)
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = set.Namespace
	}

	store, err := source.Open(source.Options{Driver: cfg.Driver, DSN: cfg.DSN, Database: cfg.Database})
	if err != nil {
		return errors.Mark(err, etl.ErrUsage)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warnw("failed to close source", "error", cerr)
		}
	}()

	out := cmd.OutOrStdout()
	extractor := &etl.Extractor{
		Store:       store,
		Mappings:    mappings,
		Namespace:   namespace,
		OutDir:      cfg.OutDir,
		DryRun:      cfg.DryRun,
		EmptyHeader: cfg.EmptyHeader,
		Progress:    out,
	}

	logger.Infow("starting extraction", "from", opts.From, "driver", cfg.Driver, "out", cfg.OutDir, "mappings", len(mappings))
	summary, err := extractor.Run(cmd.Context(), opts.From)
	if summary != nil {
		renderSummary(out, summary)
	}
	if err != nil {
		return err
	}

	if cfg.DryRun {
		pterm.Fprintln(out, pterm.Info.Sprint("Dry run, no files written"))
	} else {
		pterm.Fprintln(out, pterm.Success.Sprintf("Extracted %d mappings in %s", len(summary.Results), summary.Duration.Round(time.Millisecond)))
	}
	return nil
}

func renderSummary(w io.Writer, summary *etl.Summary) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Mapping", "File", "Rows", "Status"})
	for _, r := range summary.Results {
		status := "ok"
		if r.Err != nil {
			status = "failed"
		}
		t.AppendRow(table.Row{r.Mapping, r.File, r.Rows, status})
	}
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false
	fmt.Fprintln(w, t.Render())
}

func runExport(cmd *cobra.Command, format export.Format) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.ServiceURL == "" {
		return errors.WithHint(
			errors.Mark(errors.New("missing service url"), etl.ErrUsage),
			"Usage: export json|csv --service-url <url>",
		)
	}

	client := export.NewClient(cfg.ServiceURL, cfg.OutDir, cfg.Lang)
	res, err := client.Export(cmd.Context(), format)
	if err != nil {
		return err
	}

	pterm.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprint(res.Message), pterm.Gray(res.Path))
	return nil
}
