// Package export calls the travel service export functions and stores the
// returned document.
package export

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/BartekS5/xtravels-migrate/pkg/logger"
)

// ErrExport marks a failed export call.
var ErrExport = errors.New("export failed")

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", errors.Newf("unknown export format %q", s)
	}
}

// Endpoint is the function path relative to the service URL.
func (f Format) Endpoint() string {
	if f == FormatCSV {
		return "TravelService.exportCSV()"
	}
	return "TravelService.exportJSON()"
}

func (f Format) defaultFileName() string {
	return "Travels." + string(f)
}

// Client calls the export functions of a travel service.
type Client struct {
	ServiceURL string
	OutDir     string
	Lang       string
	HTTP       *http.Client
}

func NewClient(serviceURL, outDir, lang string) *Client {
	return &Client{
		ServiceURL: strings.TrimRight(serviceURL, "/"),
		OutDir:     outDir,
		Lang:       lang,
		HTTP:       &http.Client{Timeout: 60 * time.Second},
	}
}

// Result is a completed export.
type Result struct {
	Path    string
	Bytes   int64
	Message string
}

// Export downloads the export document and saves it into OutDir. On
// failure the returned error carries a localized message.
func (c *Client) Export(ctx context.Context, format Format) (*Result, error) {
	p := printerFor(c.Lang)
	fail := func(err error) error {
		return errors.Mark(errors.WithHint(err, p.Sprintf(msgFailed, err.Error())), ErrExport)
	}

	url := c.ServiceURL + "/" + format.Endpoint()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(errors.Wrap(err, "build request"))
	}

	logger.Debugw("export request", "url", url)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fail(errors.Wrapf(err, "GET %s", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fail(errors.Newf("GET %s: %s: %s", url, resp.Status, strings.TrimSpace(string(body))))
	}

	path := filepath.Join(c.OutDir, fileName(resp.Header.Get("Content-Disposition"), format.defaultFileName()))
	f, err := os.Create(path)
	if err != nil {
		return nil, fail(errors.Wrap(err, "create export file"))
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fail(errors.Wrapf(err, "write %s", path))
	}

	logger.Infow("export saved", "format", format, "file", path, "bytes", n)
	return &Result{Path: path, Bytes: n, Message: p.Sprintf(msgSuccess)}, nil
}

// fileName picks the attachment name from a Content-Disposition header,
// ignoring any directory part.
func fileName(disposition, fallback string) string {
	if disposition == "" {
		return fallback
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallback
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}

// Hint returns the localized message attached to an export error.
func Hint(err error) string {
	return errors.FlattenHints(err)
}
