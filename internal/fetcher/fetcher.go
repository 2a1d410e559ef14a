// Package fetcher downloads survey files over HTTP.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// HTTPFetcher downloads files with a bounded timeout. Survey workbooks run
// to tens of megabytes, so the default timeout is generous.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTP creates a fetcher. A zero timeout means 10 minutes.
func NewHTTP(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout == 0 {
		timeout = 10 * time.Minute
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// DownloadToFile fetches the URL and writes the body to path, returning
// the bytes written.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: build request for %s", rawURL)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: GET %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return 0, eris.Errorf("fetcher: GET %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "fetcher: create %s", path)
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		_ = out.Close()
		return n, eris.Wrapf(err, "fetcher: write %s", path)
	}
	if err := out.Close(); err != nil {
		return n, eris.Wrapf(err, "fetcher: close %s", path)
	}

	zap.L().Debug("downloaded survey file",
		zap.String("url", rawURL),
		zap.Int64("bytes", n),
	)
	return n, nil
}
