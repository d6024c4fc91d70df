package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestValidShopDomain(t *testing.T) {
	for shop, want := range map[string]bool{
		"my-shop.myshopify.com":      true,
		"shop1.myshopify.com":        true,
		"-shop.myshopify.com":        false,
		"my-shop.example.com":        false,
		"my-shop.myshopify.com/evil": false,
		"":                           false,
	} {
		if got := ValidShopDomain(shop); got != want {
			t.Fatalf("ValidShopDomain(%q) = %v", shop, got)
		}
	}
}

func TestAuthorizeURL(t *testing.T) {
	raw := AuthorizeURL("my-shop.myshopify.com", "key", "read_products,write_orders", "https://app.test/callback", "abc")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if u.Host != "my-shop.myshopify.com" || u.Path != "/admin/oauth/authorize" {
		t.Fatalf("unexpected url %q", raw)
	}
	q := u.Query()
	if q.Get("client_id") != "key" || q.Get("scope") != "read_products,write_orders" ||
		q.Get("redirect_uri") != "https://app.test/callback" || q.Get("state") != "abc" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestExchangeCodeForToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/oauth/access_token" {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "good" || body["client_secret"] != "secret" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "shpat_x", "scope": "read_products"})
	}))
	defer srv.Close()

	ex := OAuthExchanger{APIKey: "key", APISecret: "secret", BaseURL: srv.URL, HTTPClient: srv.Client()}

	tok, err := ex.ExchangeCodeForToken(context.Background(), "my-shop.myshopify.com", "good")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if tok.AccessToken != "shpat_x" || tok.Scope != "read_products" {
		t.Fatalf("unexpected token %+v", tok)
	}

	if _, err := ex.ExchangeCodeForToken(context.Background(), "my-shop.myshopify.com", "bad"); err == nil {
		t.Fatalf("expected error on non-200")
	}
}

func TestDomainFromURL(t *testing.T) {
	if got := domainFromURL("https://shop.example.com/"); got != "shop.example.com" {
		t.Fatalf("got %q", got)
	}
}
