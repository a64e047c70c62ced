package etl

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"

	"github.com/BartekS5/xtravels-migrate/pkg/logger"
)

// DefaultNamespace prefixes every seed file name.
const DefaultNamespace = "sap.capire.travels"

// Extractor deploys a legacy source and writes one seed file per mapping.
type Extractor struct {
	Store       Store
	Mappings    []Mapping
	Namespace   string
	OutDir      string
	DryRun      bool
	EmptyHeader bool
	// Progress receives the "extracting to" lines; nil means stdout.
	Progress io.Writer
}

// Result describes one mapping of a finished run.
type Result struct {
	Mapping string
	File    string
	Rows    int
	Err     error
}

type Summary struct {
	Results  []Result
	Duration time.Duration
}

// FileName returns the seed file name for mapping name in namespace.
func FileName(namespace, name string) string {
	return namespace + "-" + name + ".csv"
}

// Run executes all mappings concurrently against the source in sourceDir.
// A failing mapping does not stop the others; the first error is returned
// after every pipeline has finished, together with the per-mapping results.
func (e *Extractor) Run(ctx context.Context, sourceDir string) (*Summary, error) {
	if err := CheckSourceDir(sourceDir); err != nil {
		return nil, err
	}
	startTime := time.Now()

	if err := e.Store.Deploy(ctx, sourceDir); err != nil {
		return nil, markf(err, ErrQuery, "deploy %s", sourceDir)
	}

	namespace := e.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	summary := &Summary{Results: make([]Result, len(e.Mappings))}
	var g errgroup.Group
	for i, m := range e.Mappings {
		i, m := i, m
		file := filepath.Join(e.OutDir, FileName(namespace, m.Name))
		summary.Results[i] = Result{Mapping: m.Name, File: file}
		e.announce(file)

		g.Go(func() error {
			loader := NewCSVLoader(file, m.Projection.ColumnNames(), e.EmptyHeader)
			rows, err := NewPipeline(m, e.Store, loader, e.DryRun).Run(ctx)
			summary.Results[i].Rows = rows
			summary.Results[i].Err = err
			return err
		})
	}

	err := g.Wait()
	summary.Duration = time.Since(startTime)
	logger.Infow("extraction finished", "mappings", len(e.Mappings), "duration", summary.Duration, "failed", err != nil)
	return summary, err
}

func (e *Extractor) announce(file string) {
	w := e.Progress
	if w == nil {
		w = os.Stdout
	}
	pterm.Fprintln(w, "  extracting to:", pterm.Gray(localPath(file)))
}

// CheckSourceDir reports a usage error unless dir names an existing directory.
func CheckSourceDir(dir string) error {
	if dir == "" {
		return errors.WithHint(errors.Mark(errors.New("missing source directory"), ErrUsage), UsageHint)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.WithHint(errors.Mark(errors.Wrap(err, "source directory"), ErrUsage), UsageHint)
	}
	if !info.IsDir() {
		return errors.WithHint(errors.Mark(errors.Newf("source %s is not a directory", dir), ErrUsage), UsageHint)
	}
	return nil
}

// localPath shortens p relative to the working directory when possible.
func localPath(p string) string {
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if rel, err := filepath.Rel(wd, abs); err == nil {
		return rel
	}
	return p
}
