package etl

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
	"github.com/BartekS5/xtravels-migrate/pkg/utils"
)

// Quote applies the seed-file quoting rule to one value. Non-strings are
// returned unchanged.
func Quote(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s
	}
	s = strings.TrimSuffix(s, ",")
	if strings.ContainsAny(s, ",\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// FormatLine renders values as one CSV line without the terminator.
func FormatLine(values []interface{}) string {
	cells := make([]string, len(values))
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		cells[i] = utils.FormatValue(Quote(v))
	}
	return strings.Join(cells, ",")
}

// CSVLoader writes rows to a seed file. The header comes from the first
// row; with no rows the file stays empty unless EmptyHeader is set.
type CSVLoader struct {
	Path        string
	Columns     []string
	EmptyHeader bool
}

func NewCSVLoader(path string, columns []string, emptyHeader bool) *CSVLoader {
	return &CSVLoader{Path: path, Columns: columns, EmptyHeader: emptyHeader}
}

func (l *CSVLoader) Load(ctx context.Context, rows []*models.Row) (int, error) {
	f, err := os.Create(l.Path)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "create output file"), ErrIO)
	}
	written, err := l.write(ctx, f, rows)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = errors.Mark(errors.Wrapf(cerr, "close %s", l.Path), ErrIO)
	}
	return written, err
}

func (l *CSVLoader) write(ctx context.Context, f *os.File, rows []*models.Row) (int, error) {
	w := bufio.NewWriter(f)
	validator := NewValidator()

	if len(rows) == 0 && l.EmptyHeader && len(l.Columns) > 0 {
		if _, err := w.WriteString(strings.Join(l.Columns, ",") + "\n"); err != nil {
			return 0, errors.Mark(errors.Wrapf(err, "write %s", l.Path), ErrIO)
		}
	}

	written := 0
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if err := validator.ValidateRow(row); err != nil {
			return written, errors.Mark(errors.Wrapf(err, "row %d", i), ErrTransform)
		}
		if i == 0 {
			if _, err := w.WriteString(strings.Join(models.Keys(row), ",") + "\n"); err != nil {
				return written, errors.Mark(errors.Wrapf(err, "write %s", l.Path), ErrIO)
			}
		}
		if _, err := w.WriteString(FormatLine(models.Values(row)) + "\n"); err != nil {
			return written, errors.Mark(errors.Wrapf(err, "write %s", l.Path), ErrIO)
		}
		written++
	}

	if err := w.Flush(); err != nil {
		return written, errors.Mark(errors.Wrapf(err, "flush %s", l.Path), ErrIO)
	}
	return written, nil
}
