package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// ShopDomainPattern is the pattern a shop parameter must match before an install starts.
const ShopDomainPattern = `^[a-zA-Z0-9][a-zA-Z0-9\-]*\.myshopify\.com$`

var shopDomainRe = regexp.MustCompile(ShopDomainPattern)

// ValidShopDomain reports whether shop looks like {name}.myshopify.com.
func ValidShopDomain(shop string) bool {
	return shopDomainRe.MatchString(shop)
}

// AuthorizeURL is where the merchant is sent to approve the requested scopes.
func AuthorizeURL(shop, clientID, scopes, redirectURI, state string) string {
	u := url.URL{
		Scheme: "https",
		Host:   shop,
		Path:   "/admin/oauth/authorize",
	}
	q := u.Query()
	q.Set("client_id", clientID)
	q.Set("scope", scopes)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// AccessToken is the result of a successful code exchange.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	Scope       string `json:"scope"`
}

type OAuthExchanger struct {
	HTTPClient *http.Client
	APIKey     string
	APISecret  string

	// BaseURL overrides https://{shop}; used against local fakes.
	BaseURL string
}

func (o OAuthExchanger) ExchangeCodeForToken(ctx context.Context, shopDomain, code string) (*AccessToken, error) {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}

	body, _ := json.Marshal(map[string]string{
		"client_id":     o.APIKey,
		"client_secret": o.APISecret,
		"code":          code,
	})

	base := o.BaseURL
	if base == "" {
		base = "https://" + shopDomain
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/admin/oauth/access_token", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify token exchange failed: status=%d", resp.StatusCode)
	}

	var r AccessToken
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, err
	}
	if r.AccessToken == "" {
		return nil, fmt.Errorf("shopify token exchange returned empty access_token")
	}
	return &r, nil
}
