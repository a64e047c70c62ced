// Package source implements the legacy data stores the extractor reads
// from: database/sql backends and MongoDB.
package source

import (
	"fmt"
	"strings"

	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/pkg/database"
)

// Options selects and addresses a store.
type Options struct {
	Driver string
	// DSN is the connection string. For sqlite it may be empty (in-memory)
	// or a file path, relative paths resolving against the source dir.
	DSN string
	// Database names the MongoDB database.
	Database string
}

// Open returns an unconnected store; Deploy connects it.
func Open(opts Options) (etl.Store, error) {
	switch opts.Driver {
	case database.DriverSQLite, database.DriverSQLServer, database.DriverPostgres, database.DriverMySQL:
		return NewSQLStore(opts.Driver, opts.DSN), nil
	case database.DriverMongo:
		return NewMongoStore(opts.DSN, opts.Database), nil
	default:
		return nil, fmt.Errorf("unsupported source driver %q", opts.Driver)
	}
}

// TableName maps a qualified entity name to its table or collection name,
// e.g. sap.fe.cap.travel.Booking -> sap_fe_cap_travel_Booking.
func TableName(entity string) string {
	return strings.ReplaceAll(entity, ".", "_")
}
