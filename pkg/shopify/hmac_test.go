package shopify

import (
	"net/url"
	"testing"
)

func TestCanonicalQuery_SortsAndSkipsHmac(t *testing.T) {
	q := url.Values{}
	q.Set("shop", "some-shop.myshopify.com")
	q.Set("code", "0907a61c0c8d55e99db179b68161bc00")
	q.Set("timestamp", "1337178173")
	q.Set("hmac", "ignored")

	got := CanonicalQuery(q)
	want := "code=0907a61c0c8d55e99db179b68161bc00&shop=some-shop.myshopify.com&timestamp=1337178173"
	if got != want {
		t.Fatalf("canonical mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestCanonicalQuery_EscapesDelimiters(t *testing.T) {
	q := url.Values{}
	q.Set("a=b", "50%&x")

	if got, want := CanonicalQuery(q), "a%3Db=50%25%26x"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCanonicalProxyQuery_JoinsRepeatedValues(t *testing.T) {
	q := url.Values{}
	q.Add("extra", "1")
	q.Add("extra", "2")
	q.Set("shop", "some-shop.myshopify.com")
	q.Set("path_prefix", "/apps/awesome_reviews")
	q.Set("signature", "ignored")

	got := CanonicalProxyQuery(q)
	want := "extra=1,2path_prefix=/apps/awesome_reviewsshop=some-shop.myshopify.com"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestVerifyQuery(t *testing.T) {
	secret := "hush"
	q := url.Values{}
	q.Set("shop", "some-shop.myshopify.com")
	q.Set("timestamp", "1337178173")
	q.Set("hmac", SignQuery(secret, q))

	if !VerifyQuery(secret, q) {
		t.Fatalf("expected valid signature")
	}
	if VerifyQuery("other", q) {
		t.Fatalf("expected wrong secret to fail")
	}

	q.Set("shop", "evil.myshopify.com")
	if VerifyQuery(secret, q) {
		t.Fatalf("expected tampered params to fail")
	}

	q.Del("hmac")
	if VerifyQuery(secret, q) {
		t.Fatalf("expected missing hmac to fail")
	}
}

func TestVerifyProxy(t *testing.T) {
	secret := "hush"
	q := url.Values{}
	q.Set("shop", "some-shop.myshopify.com")
	q.Set("logged_in_customer_id", "")
	q.Set("timestamp", "1317327555")
	q.Set("signature", SignProxy(secret, q))

	if !VerifyProxy(secret, q) {
		t.Fatalf("expected valid proxy signature")
	}
	q.Set("timestamp", "1317327556")
	if VerifyProxy(secret, q) {
		t.Fatalf("expected tampered proxy params to fail")
	}
	if VerifyProxy("", q) {
		t.Fatalf("expected empty secret to fail")
	}
}

func TestVerifyWebhook(t *testing.T) {
	secret := "hush"
	body := []byte(`{"shop_id":954889,"shop_domain":"snowdevil.myshopify.com"}`)
	sig := SignWebhook(secret, body)

	if !VerifyWebhook(secret, body, sig) {
		t.Fatalf("expected valid webhook signature")
	}
	if VerifyWebhook(secret, append(body, ' '), sig) {
		t.Fatalf("expected modified body to fail")
	}
	if VerifyWebhook(secret, body, "") {
		t.Fatalf("expected missing header to fail")
	}
	if VerifyWebhook(secret, body, hexHMAC(secret, body)) {
		t.Fatalf("hex digest must not be accepted for webhooks")
	}
}
