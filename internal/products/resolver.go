// Package products resolves full product details on demand. Results are
// memoized per product id and concurrent lookups for the same id are
// collapsed into a single fetch.
package products

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dermatch/dermatch-go/internal/domain"
	"github.com/dermatch/dermatch-go/internal/identity"
	"github.com/dermatch/dermatch-go/internal/pkg/ctxutil"
	apperrors "github.com/dermatch/dermatch-go/internal/pkg/errors"
	"github.com/dermatch/dermatch-go/internal/pkg/logger"
)

// API is the slice of the quiz API the resolver needs.
type API interface {
	GetProduct(ctx context.Context, id identity.Identity, productID string) (domain.ProductDetail, error)
}

type Resolver struct {
	log    *logger.Logger
	api    API
	flight singleflight.Group

	mu    sync.RWMutex
	cache map[string]domain.ProductDetail
}

func NewResolver(log *logger.Logger, api API) (*Resolver, error) {
	if log == nil {
		return nil, apperrors.New(apperrors.KindValidation, "logger required")
	}
	if api == nil {
		return nil, apperrors.New(apperrors.KindValidation, "quiz api client required")
	}
	return &Resolver{
		log:   log.With("component", "ProductResolver"),
		api:   api,
		cache: make(map[string]domain.ProductDetail),
	}, nil
}

// GetDetail returns the product's full detail, fetching it at most once.
// Callers waiting on the same in-flight fetch all receive its result; a
// caller whose context ends early gets its context error while the fetch
// runs to completion for the others. Failed fetches are not cached, so the
// next call retries.
func (r *Resolver) GetDetail(ctx context.Context, id identity.Identity, productID string) (domain.ProductDetail, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.ProductDetail{}, apperrors.New(apperrors.KindValidation, "product id required")
	}
	ctx = ctxutil.Default(ctx)

	if detail, ok := r.Cached(productID); ok {
		return detail, nil
	}

	// The fetch is detached from the caller's cancellation: the flight is
	// shared, and one impatient caller must not fail it for the rest.
	fetchCtx := context.WithoutCancel(ctx)
	ch := r.flight.DoChan(productID, func() (any, error) {
		if detail, ok := r.Cached(productID); ok {
			return detail, nil
		}
		detail, err := r.api.GetProduct(fetchCtx, id, productID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[productID] = detail
		r.mu.Unlock()
		r.log.Debug("product detail resolved", "product_id", productID)
		return detail, nil
	})

	select {
	case <-ctx.Done():
		return domain.ProductDetail{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.ProductDetail{}, res.Err
		}
		return res.Val.(domain.ProductDetail), nil
	}
}

// Cached reports the memoized detail for productID, if any. It never
// triggers a fetch.
func (r *Resolver) Cached(productID string) (domain.ProductDetail, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	detail, ok := r.cache[productID]
	return detail, ok
}
