package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"shopkit/pkg/shopify"
)

const maxWebhookBody = 1 << 20

// WebhookGuard verifies X-Shopify-Hmac-Sha256 over the raw body. The body is
// restored for the handler.
type WebhookGuard struct {
	Secret string
}

func (WebhookGuard) Name() string { return "webhook" }

func (g WebhookGuard) Verify(r *http.Request) (*RequestContext, *Rejection) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, reject(http.StatusBadRequest, "invalid body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	if !shopify.VerifyWebhook(g.Secret, body, strings.TrimSpace(r.Header.Get("X-Shopify-Hmac-Sha256"))) {
		return nil, reject(http.StatusUnauthorized, "Hmac validation failed!")
	}
	return &RequestContext{StoreKey: strings.TrimSpace(r.Header.Get("X-Shopify-Shop-Domain"))}, nil
}

// AdminGuard verifies the session token sent by the embedded admin UI.
type AdminGuard struct {
	Tokens shopify.SessionTokens
}

func (AdminGuard) Name() string { return "admin" }

func (g AdminGuard) Verify(r *http.Request) (*RequestContext, *Rejection) {
	claims, terr := g.Tokens.Verify(r.Header.Get("Authorization"))
	if terr != nil {
		return nil, reject(terr.Status, terr.Message)
	}
	return &RequestContext{
		StoreID:    claims.StoreID,
		StoreKey:   claims.StoreKey,
		ExpireTime: claims.ExpireTime,
	}, nil
}

// HashTokenGuard authorizes internal endpoints with a time-boxed hash token
// bound to a subject taken from the request, e.g. a path parameter.
type HashTokenGuard struct {
	Tokens  shopify.HashTokens
	Subject func(r *http.Request) string
}

func (HashTokenGuard) Name() string { return "hash_token" }

func (g HashTokenGuard) Verify(r *http.Request) (*RequestContext, *Rejection) {
	subject := g.Subject(r)
	switch err := g.Tokens.Verify(hashTokenFromRequest(r), subject); {
	case err == nil:
		return &RequestContext{Subject: subject}, nil
	case errors.Is(err, shopify.ErrHashTokenExpired):
		return nil, reject(http.StatusUnauthorized, "`Custom-Token` is expired!")
	default:
		return nil, reject(http.StatusUnauthorized, "Invalid `Custom-Token`")
	}
}

// hashTokenFromRequest looks at ?token=, then Custom-Token, then Authorization.
func hashTokenFromRequest(r *http.Request) string {
	tok := r.URL.Query().Get("token")
	if tok == "" {
		tok = r.Header.Get("Custom-Token")
	}
	if tok == "" {
		tok = r.Header.Get("Authorization")
	}
	tok = strings.TrimSpace(tok)
	if len(tok) > 7 && strings.EqualFold(tok[:7], "bearer ") {
		tok = strings.TrimSpace(tok[7:])
	}
	return tok
}
