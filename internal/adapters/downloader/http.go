package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

// HTTPFetcher implements ports.Fetcher against a remote endpoint that
// serves the dataset as CSV.
type HTTPFetcher struct {
	endpoint   string
	outputPath string
	client     *http.Client
}

// NewHTTPFetcher creates a new HTTPFetcher.
func NewHTTPFetcher(endpoint, outputPath string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &HTTPFetcher{
		endpoint:   endpoint,
		outputPath: outputPath,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the dataset for locationKey into the output path.
func (d *HTTPFetcher) Fetch(ctx context.Context, locationKey string) (domain.FetchedDataset, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: fmt.Errorf("invalid endpoint: %w", err)}
	}
	q := u.Query()
	q.Set("city", locationKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.FetchedDataset{}, &domain.FetchError{
			Op:  "download dataset",
			Err: fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body)),
		}
	}

	if err := os.MkdirAll(filepath.Dir(d.outputPath), 0755); err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: err}
	}
	file, err := os.Create(d.outputPath)
	if err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: fmt.Errorf("failed to create dataset file: %w", err)}
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: fmt.Errorf("failed to write dataset: %w", err)}
	}
	if err := file.Close(); err != nil {
		return domain.FetchedDataset{}, &domain.FetchError{Op: "download dataset", Err: err}
	}

	return domain.FetchedDataset{Path: d.outputPath, FetchedAt: time.Now()}, nil
}

// OutputPath returns the dataset location.
func (d *HTTPFetcher) OutputPath() string {
	return d.outputPath
}
