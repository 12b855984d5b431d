package source

import (
	"fmt"
	"io"
	"net/http"

	"github.com/rstms/iso9660rr/pkg/consts"
)

// HTTPFetcher fetches sectors from a remote image over HTTP range requests,
// for navigating a disc image without downloading it in full.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher for url, using client if non-nil or
// http.DefaultClient otherwise.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: url, client: client}
}

func (f *HTTPFetcher) Fetch(sector uint32, count uint32) ([]byte, error) {
	rc, err := f.OpenStream(sector, count*consts.SectorLength)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %d sectors at sector %d: %w", count, sector, err)
	}
	return data, nil
}

func (f *HTTPFetcher) OpenStream(sector uint32, length uint32) (io.ReadCloser, error) {
	start := int64(sector) * consts.SectorLength
	end := start + int64(length) - 1

	req, err := http.NewRequest(http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build range request: %w", err)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("range request to %s: %w", f.url, err)
	}
	if resp.StatusCode != http.StatusPartialContent && resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("range request to %s: unexpected status %s", f.url, resp.Status)
	}
	return resp.Body, nil
}
