package source

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/pkg/database"
	"github.com/BartekS5/xtravels-migrate/pkg/logger"
	"github.com/BartekS5/xtravels-migrate/pkg/models"
	"github.com/BartekS5/xtravels-migrate/pkg/utils"
)

// SQLStore reads the legacy schema through database/sql.
type SQLStore struct {
	Driver string
	DSN    string
	DB     *sql.DB
}

var _ etl.Store = (*SQLStore)(nil)

func NewSQLStore(driver, dsn string) *SQLStore {
	return &SQLStore{Driver: driver, DSN: dsn}
}

// NewSQLStoreWithDB wraps an already open pool. Deploy then only applies
// scripts.
func NewSQLStoreWithDB(driver string, db *sql.DB) *SQLStore {
	return &SQLStore{Driver: driver, DB: db}
}

// Deploy connects (if needed) and runs every *.sql script under dir in
// lexical path order.
func (s *SQLStore) Deploy(ctx context.Context, dir string) error {
	if s.DB == nil {
		db, err := database.ConnectSQL(ctx, s.Driver, s.dsnFor(dir))
		if err != nil {
			return err
		}
		s.DB = db
	}

	scripts, err := findFiles(dir, ".sql")
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, path := range scripts {
		stmts, err := readScript(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for i, stmt := range stmts {
			if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s statement %d: %w", filepath.Base(path), i+1, err)
			}
		}
		logger.Debugw("applied script", "file", path, "statements", len(stmts))
	}
	logger.Infow("source deployed", "dir", dir, "driver", s.Driver, "scripts", len(scripts))
	return nil
}

func (s *SQLStore) dsnFor(dir string) string {
	if s.Driver != database.DriverSQLite {
		return s.DSN
	}
	switch {
	case s.DSN == "":
		return ":memory:"
	case s.DSN == ":memory:" || strings.HasPrefix(s.DSN, "file:") || filepath.IsAbs(s.DSN):
		return s.DSN
	default:
		return filepath.Join(dir, s.DSN)
	}
}

func (s *SQLStore) Query(ctx context.Context, p etl.Projection) ([]*models.Row, error) {
	if s.DB == nil {
		return nil, fmt.Errorf("store not deployed")
	}
	query, err := BuildQuery(s.Driver, p)
	if err != nil {
		return nil, err
	}
	logger.Debugw("projection query", "entity", p.Entity, "sql", query)

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", p.Entity, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []*models.Row
	for rows.Next() {
		columns := make([]interface{}, len(cols))
		columnPointers := make([]interface{}, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}
		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		r := models.NewRow()
		for i, colName := range cols {
			r.Set(colName, utils.NormalizeValue(columns[i]))
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.Entity, err)
	}
	return results, nil
}

func (s *SQLStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
