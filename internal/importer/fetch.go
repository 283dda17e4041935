package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/sync/errgroup"
)

// Fetcher downloads spreadsheet files from URLs so a batch can be driven
// by links instead of uploads.
type Fetcher struct {
	client      *http.Client
	maxFileSize int64
	concurrency int
}

// NewFetcher builds a Fetcher with a per-request timeout and a byte cap
// per downloaded file.
func NewFetcher(timeout time.Duration, maxFileSize int64, concurrency int) *Fetcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Fetcher{
		client:      &http.Client{Timeout: timeout},
		maxFileSize: maxFileSize,
		concurrency: concurrency,
	}
}

// FetchAll downloads every URL concurrently and returns the files in the
// same order as the input. A single failed download fails the whole call,
// since a partial batch silently missing files is worse than a retry.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]File, error) {
	files := make([]File, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, raw := range urls {
		g.Go(func() error {
			file, err := f.fetch(gctx, raw)
			if err != nil {
				return fmt.Errorf("download %s: %w", raw, err)
			}
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func (f *Fetcher) fetch(ctx context.Context, raw string) (File, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return File{}, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return File{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return File{}, fmt.Errorf("url has no usable filename")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return File{}, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return File{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	// Read one byte past the cap so an oversized body is detected instead
	// of silently truncated.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxFileSize+1))
	if err != nil {
		return File{}, err
	}
	if int64(len(data)) > f.maxFileSize {
		return File{}, fmt.Errorf("file exceeds %d byte limit", f.maxFileSize)
	}

	return File{Name: name, Data: data}, nil
}
