// Package fetch downloads source media segments into the invocation's blob store.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smartclips/clipper/internal/blob"
	"github.com/smartclips/clipper/internal/stage"
)

// Fetcher downloads segments concurrently over HTTP.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

// NewFetcher creates a fetcher. timeout bounds each individual segment GET;
// zero means no client-side timeout.
func NewFetcher(timeout time.Duration, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// FetchAll downloads every URL concurrently and joins on all of them before
// returning. Results are indexed by input position, not completion order, so
// the caller's first-failure-by-input-order policy holds regardless of how
// the downloads race. A successful fetch stores the body in the store under
// the URL itself as key; a failed fetch stores nothing.
func (f *Fetcher) FetchAll(ctx context.Context, store *blob.Store, urls []string) []stage.Result {
	results := make([]stage.Result, len(urls))
	bodies := make([][]byte, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i], bodies[i] = f.fetch(ctx, url)
		}(i, url)
	}
	wg.Wait()

	// Populate the store only after the join; each goroutine wrote a distinct
	// slot above, so the store itself never sees concurrent writers.
	for i, url := range urls {
		if results[i].Created {
			store.Put(url, bodies[i])
		}
	}
	return results
}

func (f *Fetcher) fetch(ctx context.Context, url string) (stage.Result, []byte) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return stage.Fail(stage.ArtifactSegment, "", fmt.Sprintf("build segment request: %v", err)), nil
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("segment fetch failed", zap.String("url", url), zap.Error(err))
		return stage.Fail(stage.ArtifactSegment, "", "server returned bad status: no status"), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		f.logger.Warn("segment fetch bad status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return stage.Fail(stage.ArtifactSegment, stage.CodeBadSegmentStatus,
			fmt.Sprintf("origin returned bad status on video: %d", resp.StatusCode)), nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Warn("segment body read failed", zap.String("url", url), zap.Error(err))
		return stage.Fail(stage.ArtifactSegment, "", fmt.Sprintf("read segment body: %v", err)), nil
	}
	return stage.OK(stage.ArtifactSegment), body
}
