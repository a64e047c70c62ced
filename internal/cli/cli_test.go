package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/internal/export"
)

const sflightDir = "../source/testdata/sflight"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func readSeed(t *testing.T, dir, name string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, etl.FileName(etl.DefaultNamespace, name)))
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestMigrateRequiresFrom(t *testing.T) {
	out := t.TempDir()
	_, err := execute(t, "migrate", "--out", out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrUsage))
	assert.Contains(t, errors.FlattenHints(err), "migrate --from")

	entries, readErr := os.ReadDir(out)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestMigrateRejectsUnknownDriver(t *testing.T) {
	_, err := execute(t, "migrate", "--from", sflightDir, "--out", t.TempDir(), "--driver", "oracle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, etl.ErrUsage))
}

func TestMigrateWritesSeedFiles(t *testing.T) {
	out := t.TempDir()
	stdout, err := execute(t, "migrate", "--from", sflightDir, "--out", out)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ID,Description,BeginDate,EndDate,BookingFee,TotalPrice,Currency_code,Status_code,Agency_ID,Customer_ID,createdAt,createdBy,modifiedAt,modifiedBy",
		`1,"Business Trip to Sydney, Australia",2024-06-01,2024-06-15,10.5,1200.75,EUR,O,070001,000001,2024-05-01T10:00:00.000Z,alice,2024-05-02T11:00:00.000Z,bob`,
	}, readSeed(t, out, "Travels"))

	assert.Equal(t, []string{
		"Travel_ID,Pos,BookingDate,Flight_ID,Flight_date,FlightPrice,Currency_code",
		"1,1,2024-05-01,EA0018,2024-06-09,450,EUR",
		"1,2,2024-05-01,SW0001,2024-06-14,510.25,EUR",
	}, readSeed(t, out, "Bookings"))

	assert.Equal(t, []string{
		"ID,up__Travel_ID,up__Pos,booked_ID,Price,Currency_code",
		"d00d0000-0001-4000-8000-000000000001,1,1,bv-0001,2.5,EUR",
	}, readSeed(t, out, "Bookings.Supplements"))

	assert.Contains(t, stdout, "extracting to:")
	assert.Contains(t, stdout, "sap.capire.travels-Bookings.Supplements.csv")
	assert.Contains(t, stdout, "Bookings.Supplements")
}

func TestMigrateNamespaceFromEnv(t *testing.T) {
	t.Setenv("XTRAVELS_NAMESPACE", "legacy")
	out := t.TempDir()
	_, err := execute(t, "migrate", "--from", sflightDir, "--out", out, "--dry-run")
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run writes nothing")

	_, err = execute(t, "migrate", "--from", sflightDir, "--out", out)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "legacy-Travels.csv"))
	assert.NoError(t, err)
}

func TestExportCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/TravelService.exportCSV()", r.URL.Path)
		_, _ = w.Write([]byte("ID\n1\n"))
	}))
	defer srv.Close()

	out := t.TempDir()
	stdout, err := execute(t, "export", "csv", "--service-url", srv.URL, "--out", out, "--lang", "de")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Export erfolgreich")
	assert.FileExists(t, filepath.Join(out, "Travels.csv"))
}

func TestExportCommandErrors(t *testing.T) {
	_, err := execute(t, "export", "xml", "--service-url", "http://localhost")
	assert.True(t, errors.Is(err, etl.ErrUsage))

	_, err = execute(t, "export", "json")
	assert.True(t, errors.Is(err, etl.ErrUsage))
	assert.Contains(t, errors.FlattenHints(err), "--service-url")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err = execute(t, "export", "json", "--service-url", srv.URL, "--out", t.TempDir())
	assert.True(t, errors.Is(err, export.ErrExport))
}

func TestPrintErrorShowsHint(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, errors.WithHint(errors.New("boom"), "try again"))
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), "try again")
}
