package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
)

// SignQuery returns the hex HMAC-SHA256 of CanonicalQuery(params).
func SignQuery(secret string, params url.Values) string {
	return hexHMAC(secret, []byte(CanonicalQuery(params)))
}

// VerifyQuery checks the hmac query parameter of an admin load or OAuth callback.
func VerifyQuery(secret string, params url.Values) bool {
	given := params.Get("hmac")
	if given == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignQuery(secret, params)), []byte(given))
}

// SignProxy returns the hex HMAC-SHA256 of CanonicalProxyQuery(params).
func SignProxy(secret string, params url.Values) string {
	return hexHMAC(secret, []byte(CanonicalProxyQuery(params)))
}

// VerifyProxy checks the signature query parameter Shopify adds to app proxy requests.
func VerifyProxy(secret string, params url.Values) bool {
	given := params.Get("signature")
	if given == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignProxy(secret, params)), []byte(given))
}

// SignWebhook returns base64(HMAC_SHA256(body)), the X-Shopify-Hmac-Sha256 header value.
func SignWebhook(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook verifies the webhook signature using the shared secret.
func VerifyWebhook(secret string, body []byte, hmacHeader string) bool {
	if hmacHeader == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(SignWebhook(secret, body)), []byte(hmacHeader))
}

func hexHMAC(secret string, msg []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}
