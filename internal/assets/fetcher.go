package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/logger"
)

// Fetcher retrieves and decodes model assets by URL.
//
// Decoded models are cached per URL, and concurrent requests for the same
// URL share a single fetch. Failures are not cached, so a retry re-fetches.
type Fetcher struct {
	client *http.Client
	log    *zap.Logger

	mu       sync.Mutex
	cache    map[string]*Model
	inflight map[string]*fetchCall
}

type fetchCall struct {
	done  chan struct{}
	model *Model
	err   error
}

// NewFetcher creates a fetcher with the given HTTP timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		log:      logger.Named("assets"),
		cache:    make(map[string]*Model),
		inflight: make(map[string]*fetchCall),
	}
}

// Fetch returns the decoded model for url, from cache when possible.
// Safe for concurrent use from any goroutine.
func (f *Fetcher) Fetch(ctx context.Context, url, name string) (*Model, error) {
	f.mu.Lock()
	if m, ok := f.cache[url]; ok {
		f.mu.Unlock()
		return m, nil
	}
	if call, ok := f.inflight[url]; ok {
		f.mu.Unlock()
		select {
		case <-call.done:
			return call.model, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &fetchCall{done: make(chan struct{})}
	f.inflight[url] = call
	f.mu.Unlock()

	model, err := f.fetch(ctx, url, name)

	f.mu.Lock()
	delete(f.inflight, url)
	if err == nil {
		f.cache[url] = model
	}
	f.mu.Unlock()

	call.model = model
	call.err = err
	close(call.done)

	return model, err
}

// Cached reports whether url already has a decoded model in the cache.
func (f *Fetcher) Cached(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.cache[url]
	return ok
}

func (f *Fetcher) fetch(ctx context.Context, url, name string) (*Model, error) {
	start := time.Now()

	data, err := f.read(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	model, err := DecodeGLB(name, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}

	f.log.Debug("asset fetched",
		zap.String("url", url),
		zap.Int("bytes", len(data)),
		zap.Int("vertices", len(model.Vertices)),
		zap.Int("clips", len(model.Clips)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return model, nil
}

// read loads raw bytes from an http(s) URL, a file:// URL or a plain path.
func (f *Fetcher) read(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)

	case strings.HasPrefix(url, "file://"):
		return os.ReadFile(strings.TrimPrefix(url, "file://"))

	default:
		return os.ReadFile(url)
	}
}
