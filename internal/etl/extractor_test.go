package etl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/BartekS5/xtravels-migrate/pkg/models"
)

// fakeStore serves canned rows per entity.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string][]*models.Row
	fail      map[string]error
	deployErr error
	deployed  string
}

func (f *fakeStore) Deploy(_ context.Context, dir string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deployed = dir
	return f.deployErr
}

func (f *fakeStore) Query(_ context.Context, p Projection) ([]*models.Row, error) {
	if err := f.fail[p.Entity]; err != nil {
		return nil, err
	}
	// hand out copies so transforms never touch the fixtures
	var out []*models.Row
	for _, r := range f.rows[p.Entity] {
		c := models.NewRow()
		for pair := r.Oldest(); pair != nil; pair = pair.Next() {
			c.Set(pair.Key, pair.Value)
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

func testMappings(t *testing.T) []Mapping {
	t.Helper()
	set := &models.MappingSet{Mappings: []models.MappingSchema{
		{
			Name:   "Travels",
			Entity: "Travel",
			Fields: []models.FieldConfig{
				{As: "ID", From: []string{"TravelID"}},
				{As: "Description", From: []string{"Description"}},
			},
		},
		{
			Name:   "Bookings",
			Entity: "Booking",
			Fields: []models.FieldConfig{
				{As: "Flight_ID", From: []string{"ConnectionID"}},
				{As: "Flight_date", From: []string{"FlightDate"}},
			},
			Transforms: flightDateShift(),
		},
		{
			Name:   "Bookings.Supplements",
			Entity: "BookingSupplement",
			Fields: []models.FieldConfig{{As: "ID", From: []string{"BookSupplUUID"}}},
		},
	}}
	mappings, err := Compile(set)
	require.NoError(t, err)
	return mappings
}

func newTestExtractor(t *testing.T, store Store) (*Extractor, string) {
	out := t.TempDir()
	return &Extractor{
		Store:     store,
		Mappings:  testMappings(t),
		Namespace: DefaultNamespace,
		OutDir:    out,
		Progress:  io.Discard,
	}, out
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, FileName(DefaultNamespace, name)))
	require.NoError(t, err)
	return string(data)
}

func TestExtractorWritesOneFilePerMapping(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeStore{rows: map[string][]*models.Row{
		"Travel": {models.RowOf("ID", "T1", "Description", "Trip")},
		"Booking": {
			models.RowOf("Flight_ID", "EA0018", "Flight_date", "2024-06-02"),
			models.RowOf("Flight_ID", "SW0001", "Flight_date", "2024-06-02"),
		},
	}}
	e, out := newTestExtractor(t, store)
	src := t.TempDir()

	summary, err := e.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, src, store.deployed)

	assert.Equal(t, "ID,Description\nT1,Trip\n", readOutput(t, out, "Travels"))
	assert.Equal(t, "Flight_ID,Flight_date\nEA0018,2024-06-09\nSW0001,2024-06-02\n", readOutput(t, out, "Bookings"))
	assert.Empty(t, readOutput(t, out, "Bookings.Supplements"), "zero rows give an empty file")

	require.Len(t, summary.Results, 3)
	assert.Equal(t, "Travels", summary.Results[0].Mapping)
	assert.Equal(t, 1, summary.Results[0].Rows)
	assert.Equal(t, 2, summary.Results[1].Rows)
	assert.Equal(t, 0, summary.Results[2].Rows)
	assert.Equal(t, filepath.Join(out, "sap.capire.travels-Bookings.Supplements.csv"), summary.Results[2].File)
}

func TestExtractorFailureDoesNotStopSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := &fakeStore{
		rows: map[string][]*models.Row{
			"Travel":            {models.RowOf("ID", "T1", "Description", "Trip, long")},
			"BookingSupplement": {models.RowOf("ID", "S1")},
		},
		fail: map[string]error{"Booking": fmt.Errorf("connection refused")},
	}
	e, out := newTestExtractor(t, store)

	summary, err := e.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))
	assert.ErrorContains(t, err, "connection refused")

	assert.Equal(t, "ID,Description\nT1,\"Trip, long\"\n", readOutput(t, out, "Travels"))
	assert.Equal(t, "ID\nS1\n", readOutput(t, out, "Bookings.Supplements"))
	_, statErr := os.Stat(filepath.Join(out, FileName(DefaultNamespace, "Bookings")))
	assert.True(t, os.IsNotExist(statErr), "failed query creates no file")

	require.NotNil(t, summary)
	assert.Error(t, summary.Results[1].Err)
	assert.NoError(t, summary.Results[0].Err)
}

func TestExtractorUsageErrors(t *testing.T) {
	store := &fakeStore{}
	e, _ := newTestExtractor(t, store)

	_, err := e.Run(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUsage))
	assert.Contains(t, errors.FlattenHints(err), "--from")

	_, err = e.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, ErrUsage))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = e.Run(context.Background(), file)
	assert.True(t, errors.Is(err, ErrUsage))

	assert.Empty(t, store.deployed, "nothing runs after a usage error")
}

func TestExtractorDeployFailure(t *testing.T) {
	e, out := newTestExtractor(t, &fakeStore{deployErr: fmt.Errorf("no such schema")})

	_, err := e.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuery))

	entries, readErr := os.ReadDir(out)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestExtractorTransformFailure(t *testing.T) {
	store := &fakeStore{rows: map[string][]*models.Row{
		"Booking": {models.RowOf("Flight_ID", "EA0018", "Flight_date", "next week")},
	}}
	e, _ := newTestExtractor(t, store)

	_, err := e.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransform))
}

func TestExtractorDryRunWritesNothing(t *testing.T) {
	store := &fakeStore{rows: map[string][]*models.Row{
		"Travel": {models.RowOf("ID", "T1", "Description", "Trip")},
	}}
	e, out := newTestExtractor(t, store)
	e.DryRun = true

	summary, err := e.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Results[0].Rows)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
