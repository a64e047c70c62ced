package etl

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/BartekS5/xtravels-migrate/pkg/logger"
)

// Pipeline runs fetch, transform and load for a single mapping.
type Pipeline struct {
	Mapping Mapping
	Store   Store
	Loader  Loader
	DryRun  bool
}

func NewPipeline(m Mapping, store Store, loader Loader, dryRun bool) *Pipeline {
	return &Pipeline{
		Mapping: m,
		Store:   store,
		Loader:  loader,
		DryRun:  dryRun,
	}
}

// Run returns the number of rows extracted (and written, unless dry-run).
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	name := p.Mapping.Name
	startTime := time.Now()
	logger.Debugw("pipeline started", "mapping", name, "entity", p.Mapping.Projection.Entity, "dryRun", p.DryRun)

	// 1. Extract
	rows, err := p.Store.Query(ctx, p.Mapping.Projection)
	if err != nil {
		logger.Errorw("extraction failed", "mapping", name, "error", err)
		return 0, markf(err, ErrQuery, "query %s", name)
	}

	// 2. Transform
	if p.Mapping.Transform != nil {
		for i, row := range rows {
			if err := p.Mapping.Transform(row); err != nil {
				logger.Errorw("transform failed", "mapping", name, "row", i, "error", err)
				return 0, markf(err, ErrTransform, "transform %s row %d", name, i)
			}
		}
	}

	// 3. Load (skip if DryRun)
	count := len(rows)
	if p.DryRun {
		logger.Infof("[DRY RUN] %s: would write %d rows", name, count)
		return count, nil
	}
	if count == 0 {
		logger.Warnw("mapping returned no rows", "mapping", name)
	}

	written, err := p.Loader.Load(ctx, rows)
	if err != nil {
		logger.Errorw("loading failed", "mapping", name, "written", written, "error", err)
		return written, errors.Wrapf(err, "load %s", name)
	}

	duration := time.Since(startTime)
	rate := 0.0
	if duration.Seconds() > 0 {
		rate = float64(written) / duration.Seconds()
	}
	logger.Infow("mapping done", "mapping", name, "rows", written, "rate", rate)
	return written, nil
}
