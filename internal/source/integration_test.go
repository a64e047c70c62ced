//go:build integration

package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tsuite "github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"
	tcmssql "github.com/testcontainers/testcontainers-go/modules/mssql"
	tcpsql "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/BartekS5/xtravels-migrate/pkg/database"
	"github.com/BartekS5/xtravels-migrate/pkg/models"
)

// SQLStoreTestSuite deploys the legacy fixtures into real servers and runs
// the Bookings projection against each.
type SQLStoreTestSuite struct {
	tsuite.Suite
	ctx context.Context

	pg    *tcpsql.PostgresContainer
	mssql *tcmssql.MSSQLServerContainer
}

func TestSQLStoreTestSuite(t *testing.T) {
	tsuite.Run(t, new(SQLStoreTestSuite))
}

func (suite *SQLStoreTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	pg, err := tcpsql.Run(suite.ctx, "postgres:16-alpine",
		tcpsql.WithDatabase("sflight"),
		tcpsql.BasicWaitStrategies(),
	)
	suite.Require().NoError(err)
	suite.pg = pg

	ms, err := tcmssql.Run(suite.ctx, "mcr.microsoft.com/mssql/server:2022-CU17-ubuntu-22.04",
		tcmssql.WithAcceptEULA(),
		tcmssql.WithPassword("H3ll0@W0rld"),
	)
	suite.Require().NoError(err)
	suite.mssql = ms
}

func (suite *SQLStoreTestSuite) TearDownSuite() {
	tc.CleanupContainer(suite.T(), suite.pg)
	tc.CleanupContainer(suite.T(), suite.mssql)
}

func (suite *SQLStoreTestSuite) TestPostgres() {
	t := suite.T()
	dsn, err := suite.pg.ConnectionString(suite.ctx, "sslmode=disable")
	require.NoError(t, err)

	store := NewSQLStore(database.DriverPostgres, dsn)
	defer store.Close()
	require.NoError(t, store.Deploy(suite.ctx, filepath.Join("testdata", "sflight")))

	assertBookings(t, store)
}

func (suite *SQLStoreTestSuite) TestSQLServer() {
	t := suite.T()
	dsn, err := suite.mssql.ConnectionString(suite.ctx, "encrypt=false", "TrustServerCertificate=true")
	require.NoError(t, err)

	db, err := database.ConnectSQL(suite.ctx, database.DriverSQLServer, dsn)
	require.NoError(t, err)
	// the fixtures use double-quoted identifiers
	db.SetMaxOpenConns(1)
	_, err = db.ExecContext(suite.ctx, "SET QUOTED_IDENTIFIER ON")
	require.NoError(t, err)

	store := NewSQLStoreWithDB(database.DriverSQLServer, db)
	defer store.Close()
	require.NoError(t, store.Deploy(suite.ctx, filepath.Join("testdata", "sflight")))

	assertBookings(t, store)
}

func assertBookings(t *testing.T, store *SQLStore) {
	rows, err := store.Query(context.Background(), bookingsProjection())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byPos := map[int64]*models.Row{}
	for _, r := range rows {
		pos, _ := r.Get("Pos")
		byPos[pos.(int64)] = r
	}

	first := byPos[1]
	require.NotNil(t, first)
	id, _ := first.Get("Flight_ID")
	assert.Equal(t, "EA0018", id)
	date, _ := first.Get("Flight_date")
	assert.Equal(t, "2024-06-02", date)
}
