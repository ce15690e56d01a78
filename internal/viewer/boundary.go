package viewer

import (
	"context"

	"go.uber.org/zap"

	"github.com/luzcry/showroom/internal/assets"
	"github.com/luzcry/showroom/internal/catalog"
	"github.com/luzcry/showroom/internal/logger"
)

// Loader resolves a model descriptor to a decoded asset. Implementations
// must be safe for concurrent use; the controller issues loads from
// goroutines it spawns per generation.
type Loader interface {
	RequestLoad(ctx context.Context, desc catalog.ModelDescriptor) (*assets.Model, error)
}

// Boundary is the production Loader. It makes sure the rendering engine is
// materialized before the first asset resolves, then delegates to the shared
// fetcher which caches by URL and collapses concurrent requests.
type Boundary struct {
	fetcher *assets.Fetcher
	acquire func() error
	log     *zap.Logger
}

// NewBoundary builds a Boundary around fetcher. acquire is invoked before
// every load and must be idempotent; it typically points at engine.Acquire.
func NewBoundary(fetcher *assets.Fetcher, acquire func() error) *Boundary {
	return &Boundary{
		fetcher: fetcher,
		acquire: acquire,
		log:     logger.Named("boundary"),
	}
}

func (b *Boundary) RequestLoad(ctx context.Context, desc catalog.ModelDescriptor) (*assets.Model, error) {
	if b.acquire != nil {
		if err := b.acquire(); err != nil {
			return nil, &LoadError{Reason: "engine unavailable", Err: err}
		}
	}
	m, err := b.fetcher.Fetch(ctx, desc.URL, desc.Name)
	if err != nil {
		return nil, &LoadError{Reason: "fetch " + desc.URL, Err: err}
	}
	return m, nil
}

// Preload warms the fetcher cache for desc without reporting the outcome
// anywhere but the log. Used on card hover; a later RequestLoad for the same
// URL either hits the cache or joins the in-flight fetch.
func (b *Boundary) Preload(desc catalog.ModelDescriptor) {
	go func() {
		if _, err := b.RequestLoad(context.Background(), desc); err != nil {
			b.log.Debug("preload failed", zap.String("url", desc.URL), zap.Error(err))
		}
	}()
}
