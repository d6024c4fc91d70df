package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"shopkit/internal/metrics"
)

// BypassStoreKey is the shop domain injected when verification is bypassed.
const BypassStoreKey = "local-dev-bypass.myshopify.com"

// requestMaxAge is how old a signed Shopify timestamp may be.
const requestMaxAge = 24 * time.Hour

// Guard verifies one kind of inbound request.
type Guard interface {
	Name() string
	Verify(r *http.Request) (*RequestContext, *Rejection)
}

// Rejection stops the request. A non-empty Redirect sends a 302 instead of a JSON body.
type Rejection struct {
	Status   int
	Message  string
	Data     any
	Redirect string
}

func reject(status int, message string) *Rejection {
	return &Rejection{Status: status, Message: message}
}

// Protector turns guards into chi middleware.
type Protector struct {
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

func (p Protector) Protect(g Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, rej := g.Verify(r)
			if rej != nil {
				p.Metrics.Guard(g.Name(), "rejected")
				p.Logger.Warn().
					Str("guard", g.Name()).
					Int("status", rej.Status).
					Str("path", r.URL.Path).
					Msg(rej.Message)
				if rej.Redirect != "" {
					http.Redirect(w, r, rej.Redirect, http.StatusFound)
					return
				}
				WriteJSON(w, Envelope{Status: rej.Status, Message: rej.Message, Data: rej.Data})
				return
			}
			p.Metrics.Guard(g.Name(), "accepted")
			next.ServeHTTP(w, r.WithContext(WithRequestContext(r.Context(), rc)))
		})
	}
}

// Bypass wraps g so that every request is accepted as the synthetic development
// store when storeID is non-zero. With storeID zero g is returned unchanged.
func Bypass(g Guard, storeID int64) Guard {
	if storeID == 0 {
		return g
	}
	return bypassGuard{inner: g, storeID: storeID}
}

type bypassGuard struct {
	inner   Guard
	storeID int64
}

func (b bypassGuard) Name() string { return b.inner.Name() }

func (b bypassGuard) Verify(*http.Request) (*RequestContext, *Rejection) {
	return &RequestContext{StoreID: b.storeID, StoreKey: BypassStoreKey}, nil
}

// freshTimestamp reports whether a unix timestamp parameter is less than 24h old.
// A missing or malformed timestamp counts as expired.
func freshTimestamp(raw string, now time.Time) bool {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	return now.Unix()-ts < int64(requestMaxAge/time.Second)
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}
