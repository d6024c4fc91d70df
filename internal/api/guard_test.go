package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopkit/internal/store"
	"shopkit/internal/store/storetest"
	"shopkit/pkg/shopify"
)

const testSecret = "hush"

var testNow = time.Unix(1700000000, 0)

func fixedNow() time.Time { return testNow }

func signedQuery(ts int64, extra url.Values) url.Values {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("shop", "my-shop.myshopify.com")
	q.Set("timestamp", strconv.FormatInt(ts, 10))
	q.Set("hmac", shopify.SignQuery(testSecret, q))
	return q
}

func callbackRequest(q url.Values, state string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/callback?"+q.Encode(), nil)
	if state != "" {
		r.AddCookie(&http.Cookie{Name: StateCookie, Value: state})
	}
	return r
}

func TestCallbackGuard(t *testing.T) {
	g := CallbackGuard{Secret: testSecret, Now: fixedNow}
	extra := url.Values{"code": {"abc"}, "state": {"s1"}}

	t.Run("accepts fresh signed request", func(t *testing.T) {
		rc, rej := g.Verify(callbackRequest(signedQuery(testNow.Unix()-86399, extra), "s1"))
		require.Nil(t, rej)
		assert.Equal(t, "my-shop.myshopify.com", rc.StoreKey)
		assert.Equal(t, "abc", rc.Code)
	})

	t.Run("state mismatch is checked before hmac", func(t *testing.T) {
		q := signedQuery(testNow.Unix(), extra)
		q.Set("hmac", "bogus")
		_, rej := g.Verify(callbackRequest(q, "other"))
		require.NotNil(t, rej)
		assert.Equal(t, http.StatusForbidden, rej.Status)
		assert.Equal(t, "Request origin cannot be verified", rej.Message)
	})

	t.Run("missing cookie", func(t *testing.T) {
		_, rej := g.Verify(callbackRequest(signedQuery(testNow.Unix(), extra), ""))
		require.NotNil(t, rej)
		assert.Equal(t, http.StatusForbidden, rej.Status)
	})

	t.Run("exactly one day old is expired", func(t *testing.T) {
		_, rej := g.Verify(callbackRequest(signedQuery(testNow.Unix()-86400, extra), "s1"))
		require.NotNil(t, rej)
		assert.Equal(t, http.StatusUnauthorized, rej.Status)
		assert.Equal(t, "The request has expired", rej.Message)
	})

	t.Run("bad hmac", func(t *testing.T) {
		q := signedQuery(testNow.Unix(), extra)
		q.Set("code", "tampered")
		_, rej := g.Verify(callbackRequest(q, "s1"))
		require.NotNil(t, rej)
		assert.Equal(t, "Hmac validation failed!", rej.Message)
	})
}

func TestEmbeddedGuard(t *testing.T) {
	g := EmbeddedGuard{Secret: testSecret, DocsURL: "/docs/", Now: fixedNow}
	extra := url.Values{"host": {"aG9zdA"}, "session": {"sess"}}

	rc, rej := g.Verify(httptest.NewRequest(http.MethodGet, "/?"+signedQuery(testNow.Unix(), extra).Encode(), nil))
	require.Nil(t, rej)
	assert.Equal(t, "aG9zdA", rc.Host)

	q := signedQuery(testNow.Unix(), url.Values{"host": {"aG9zdA"}})
	_, rej = g.Verify(httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil))
	require.NotNil(t, rej)
	assert.Equal(t, "/docs/", rej.Redirect)

	q = signedQuery(testNow.Unix(), extra)
	q.Set("host", "other")
	_, rej = g.Verify(httptest.NewRequest(http.MethodGet, "/?"+q.Encode(), nil))
	require.NotNil(t, rej)
	assert.Equal(t, "Invalid HMAC", rej.Message)
}

func TestProxyGuard(t *testing.T) {
	stores := storetest.NewMemory(store.Store{ID: 9, Key: "my-shop.myshopify.com"})
	g := ProxyGuard{Secret: testSecret, Stores: stores, Debug: true}

	sign := func(shop string) url.Values {
		q := url.Values{"shop": {shop}, "path_prefix": {"/apps/x"}, "timestamp": {"1"}}
		q.Set("signature", shopify.SignProxy(testSecret, q))
		return q
	}

	rc, rej := g.Verify(httptest.NewRequest(http.MethodGet, "/proxy/ping?"+sign("my-shop.myshopify.com").Encode(), nil))
	require.Nil(t, rej)
	assert.Equal(t, int64(9), rc.StoreID)

	_, rej = g.Verify(httptest.NewRequest(http.MethodGet, "/proxy/ping?"+sign("gone.myshopify.com").Encode(), nil))
	require.NotNil(t, rej)
	assert.Equal(t, "Store[gone.myshopify.com] does not exists!", rej.Message)

	_, rej = g.Verify(httptest.NewRequest(http.MethodGet, "/proxy/ping?shop=my-shop.myshopify.com&signature=nope", nil))
	require.NotNil(t, rej)
	assert.Equal(t, "Proxy validation failed!", rej.Message)
	assert.NotNil(t, rej.Data)

	g.Debug = false
	_, rej = g.Verify(httptest.NewRequest(http.MethodGet, "/proxy/ping?shop=my-shop.myshopify.com&signature=nope", nil))
	require.NotNil(t, rej)
	assert.Nil(t, rej.Data)
}

func TestWebhookGuardRestoresBody(t *testing.T) {
	body := `{"shop_domain":"my-shop.myshopify.com"}`
	r := httptest.NewRequest(http.MethodPost, "/webhook/shop/redact", strings.NewReader(body))
	r.Header.Set("X-Shopify-Hmac-Sha256", shopify.SignWebhook(testSecret, []byte(body)))
	r.Header.Set("X-Shopify-Shop-Domain", "my-shop.myshopify.com")

	rc, rej := WebhookGuard{Secret: testSecret}.Verify(r)
	require.Nil(t, rej)
	assert.Equal(t, "my-shop.myshopify.com", rc.StoreKey)

	got, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestAdminGuard(t *testing.T) {
	tokens := shopify.SessionTokens{Secret: testSecret, Now: fixedNow}
	tok, err := tokens.Mint(5, "my-shop.myshopify.com")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/admin/test_jwt", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	rc, rej := AdminGuard{Tokens: tokens}.Verify(r)
	require.Nil(t, rej)
	assert.Equal(t, int64(5), rc.StoreID)

	later := tokens
	later.Now = func() time.Time { return testNow.Add(time.Hour) }
	_, rej = AdminGuard{Tokens: later}.Verify(r)
	require.NotNil(t, rej)
	assert.Equal(t, http.StatusUnauthorized, rej.Status)
}

func TestHashTokenGuard(t *testing.T) {
	tokens := shopify.HashTokens{Secret: testSecret, Location: time.UTC, Now: fixedNow}
	tok, err := tokens.Mint("cust-1", shopify.Hourly)
	require.NoError(t, err)

	g := HashTokenGuard{Tokens: tokens, Subject: func(*http.Request) string { return "cust-1" }}

	for _, set := range []func(r *http.Request){
		func(r *http.Request) { r.URL.RawQuery = "token=" + tok },
		func(r *http.Request) { r.Header.Set("Custom-Token", tok) },
		func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) },
	} {
		r := httptest.NewRequest(http.MethodGet, "/links/cust-1", nil)
		set(r)
		rc, rej := g.Verify(r)
		require.Nil(t, rej)
		assert.Equal(t, "cust-1", rc.Subject)
	}

	r := httptest.NewRequest(http.MethodGet, "/links/cust-1", nil)
	r.Header.Set("Custom-Token", tok)
	expired := g
	expired.Tokens.Now = func() time.Time { return testNow.Add(2 * time.Hour) }
	_, rej := expired.Verify(r)
	require.NotNil(t, rej)
	assert.Equal(t, "`Custom-Token` is expired!", rej.Message)

	r.Header.Set("Custom-Token", "junk")
	_, rej = g.Verify(r)
	require.NotNil(t, rej)
	assert.Equal(t, "Invalid `Custom-Token`", rej.Message)
}

func TestProtect(t *testing.T) {
	p := Protector{Logger: zerolog.Nop()}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteStatus(w, 0, FromContext(r.Context()).StoreKey)
	})

	t.Run("rejection writes envelope with matching status", func(t *testing.T) {
		w := httptest.NewRecorder()
		p.Protect(WebhookGuard{Secret: testSecret})(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var env Envelope
		require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
		assert.Equal(t, 401, env.Status)
		assert.Equal(t, "Hmac validation failed!", env.Message)
	})

	t.Run("redirect", func(t *testing.T) {
		w := httptest.NewRecorder()
		p.Protect(EmbeddedGuard{Secret: testSecret, DocsURL: "/docs/"})(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/docs/", w.Header().Get("Location"))
	})

	t.Run("bypass injects development store", func(t *testing.T) {
		w := httptest.NewRecorder()
		p.Protect(Bypass(WebhookGuard{Secret: testSecret}, 3))(next).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), BypassStoreKey)
	})

	t.Run("zero bypass keeps guard", func(t *testing.T) {
		g := WebhookGuard{Secret: testSecret}
		assert.Equal(t, g, Bypass(g, 0))
	})
}

func TestFreshTimestamp(t *testing.T) {
	assert.True(t, freshTimestamp(strconv.FormatInt(testNow.Unix()-86399, 10), testNow))
	assert.False(t, freshTimestamp(strconv.FormatInt(testNow.Unix()-86400, 10), testNow))
	assert.False(t, freshTimestamp("", testNow))
	assert.False(t, freshTimestamp("abc", testNow))
}
