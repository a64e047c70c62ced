package etl

import (
	"fmt"
	"time"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
	"github.com/BartekS5/xtravels-migrate/pkg/utils"
)

// RowTransform rewrites a materialized row in place.
type RowTransform func(row *models.Row) error

// Transformer applies a chain of row transforms built from mapping config.
type Transformer struct {
	steps []RowTransform
}

const day = 24 * time.Hour

// NewTransformer compiles transform descriptors. It returns nil when there
// is nothing to apply.
func NewTransformer(cfgs []models.TransformConfig) (*Transformer, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	t := &Transformer{}
	for _, cfg := range cfgs {
		step, err := compileTransform(cfg)
		if err != nil {
			return nil, err
		}
		t.steps = append(t.steps, step)
	}
	return t, nil
}

func (t *Transformer) Apply(row *models.Row) error {
	for _, step := range t.steps {
		if err := step(row); err != nil {
			return err
		}
	}
	return nil
}

func compileTransform(cfg models.TransformConfig) (RowTransform, error) {
	if cfg.Field == "" {
		return nil, fmt.Errorf("transform %q: field is required", cfg.Type)
	}
	match := matcher(cfg.When)

	switch cfg.Type {
	case "shift-date":
		delta := time.Duration(cfg.Days) * day
		return func(row *models.Row) error {
			if !match(row) {
				return nil
			}
			val, ok := row.Get(cfg.Field)
			if !ok || val == nil {
				return nil
			}
			shifted, err := ShiftDate(val, delta)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Field, err)
			}
			row.Set(cfg.Field, shifted)
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown transform type %q", cfg.Type)
	}
}

func matcher(cond *models.ConditionConfig) func(*models.Row) bool {
	if cond == nil {
		return func(*models.Row) bool { return true }
	}
	allowed := make(map[string]bool, len(cond.In))
	for _, v := range cond.In {
		allowed[v] = true
	}
	return func(row *models.Row) bool {
		val, ok := row.Get(cond.Field)
		if !ok || val == nil {
			return false
		}
		return allowed[utils.FormatValue(val)]
	}
}

// ShiftDate moves the calendar date of val by delta and returns it as
// YYYY-MM-DD. The shift is computed from midnight UTC of the original date.
func ShiftDate(val interface{}, delta time.Duration) (string, error) {
	d, err := utils.DateOf(val)
	if err != nil {
		return "", err
	}
	return d.Add(delta).Format(utils.DateLayout), nil
}
