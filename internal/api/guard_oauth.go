package api

import (
	"net/http"
	"time"

	"shopkit/pkg/shopify"
)

// StateCookie carries the OAuth anti-forgery state between install and callback.
const StateCookie = "state"

// CallbackGuard verifies the OAuth callback: state cookie, timestamp, then HMAC.
type CallbackGuard struct {
	Secret string
	Now    func() time.Time
}

func (CallbackGuard) Name() string { return "callback" }

func (g CallbackGuard) Verify(r *http.Request) (*RequestContext, *Rejection) {
	q := r.URL.Query()

	c, err := r.Cookie(StateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		return nil, reject(http.StatusForbidden, "Request origin cannot be verified")
	}
	if !freshTimestamp(q.Get("timestamp"), clock(g.Now)) {
		return nil, reject(http.StatusUnauthorized, "The request has expired")
	}
	if !shopify.VerifyQuery(g.Secret, q) {
		return nil, reject(http.StatusUnauthorized, "Hmac validation failed!")
	}
	return &RequestContext{StoreKey: q.Get("shop"), Code: q.Get("code")}, nil
}

// embeddedParams must all be present on an embedded app load.
var embeddedParams = []string{"shop", "hmac", "host", "timestamp", "session"}

// EmbeddedGuard verifies the signed query Shopify appends when loading the app in the admin.
type EmbeddedGuard struct {
	Secret  string
	DocsURL string
	Now     func() time.Time
}

func (EmbeddedGuard) Name() string { return "embedded" }

func (g EmbeddedGuard) Verify(r *http.Request) (*RequestContext, *Rejection) {
	q := r.URL.Query()
	for _, k := range embeddedParams {
		if q.Get(k) == "" {
			return nil, &Rejection{Status: http.StatusFound, Message: "missing " + k, Redirect: g.DocsURL}
		}
	}
	if !freshTimestamp(q.Get("timestamp"), clock(g.Now)) {
		return nil, reject(http.StatusUnauthorized, "The request has expired")
	}
	if !shopify.VerifyQuery(g.Secret, q) {
		return nil, reject(http.StatusUnauthorized, "Invalid HMAC")
	}
	return &RequestContext{StoreKey: q.Get("shop"), Host: q.Get("host")}, nil
}
