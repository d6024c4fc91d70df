package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"shopkit/internal/store"
	"shopkit/pkg/shopify"
)

// StoreFinder resolves a store by its shop domain.
type StoreFinder interface {
	FindByKey(ctx context.Context, key string) (*store.Store, error)
}

// ProxyGuard verifies app proxy requests and resolves the calling store.
// With Debug set, rejections echo the request headers and params.
type ProxyGuard struct {
	Secret string
	Stores StoreFinder
	Debug  bool
}

func (ProxyGuard) Name() string { return "proxy" }

func (g ProxyGuard) Verify(r *http.Request) (*RequestContext, *Rejection) {
	q := r.URL.Query()
	if !shopify.VerifyProxy(g.Secret, q) {
		rej := reject(http.StatusUnauthorized, "Proxy validation failed!")
		if g.Debug {
			rej.Data = map[string]any{"headers": r.Header, "params": q}
		}
		return nil, rej
	}

	key := q.Get("shop")
	s, err := g.Stores.FindByKey(r.Context(), key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, reject(http.StatusUnauthorized, fmt.Sprintf("Store[%s] does not exists!", key))
	}
	if err != nil {
		return nil, reject(http.StatusInternalServerError, "store lookup failed")
	}
	return &RequestContext{StoreID: s.ID, StoreKey: key}, nil
}
