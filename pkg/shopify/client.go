package shopify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/rs/zerolog"
)

const installationQuery = `{ shop { name url } appInstallation { accessScopes { handle } } }`

var (
	ErrMissingShopData     = errors.New("shop data missing from response")
	ErrMissingInstallation = errors.New("app installation missing from response")
)

// Installation is what the callback persists about a freshly installed shop.
type Installation struct {
	Name   string
	URL    string
	Domain string
	Scopes []string
}

// Client talks to the Admin API of a single shop per call.
type Client struct {
	App        goshopify.App
	APIVersion string
	Logger     zerolog.Logger
}

func NewClient(apiKey, apiSecret, apiVersion string, logger zerolog.Logger) Client {
	return Client{
		App:        goshopify.App{ApiKey: apiKey, ApiSecret: apiSecret},
		APIVersion: apiVersion,
		Logger:     logger,
	}
}

func (c Client) newClient(shopDomain, accessToken string) (*goshopify.Client, error) {
	var opts []goshopify.Option
	if c.APIVersion != "" {
		opts = append(opts, goshopify.WithVersion(c.APIVersion))
	}
	client, err := goshopify.NewClient(c.App, shopDomain, accessToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

type installationResponse struct {
	Shop *struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"shop"`
	AppInstallation *struct {
		AccessScopes []struct {
			Handle string `json:"handle"`
		} `json:"accessScopes"`
	} `json:"appInstallation"`
}

// FetchInstallation reads the shop name/url and the scopes currently granted to the app.
func (c Client) FetchInstallation(ctx context.Context, shopDomain, accessToken string) (*Installation, error) {
	client, err := c.newClient(shopDomain, accessToken)
	if err != nil {
		return nil, err
	}

	var resp installationResponse
	if err := client.GraphQL.Query(ctx, installationQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("installation query: %w", err)
	}
	if resp.Shop == nil || resp.Shop.URL == "" {
		return nil, ErrMissingShopData
	}
	if resp.AppInstallation == nil {
		return nil, ErrMissingInstallation
	}

	inst := &Installation{
		Name:   resp.Shop.Name,
		URL:    resp.Shop.URL,
		Domain: domainFromURL(resp.Shop.URL),
	}
	for _, s := range resp.AppInstallation.AccessScopes {
		inst.Scopes = append(inst.Scopes, s.Handle)
	}
	c.Logger.Debug().Str("shop", shopDomain).Strs("scopes", inst.Scopes).Msg("fetched installation")
	return inst, nil
}

// RegisterWebhook subscribes address to topic, e.g. "app/uninstalled".
func (c Client) RegisterWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) error {
	topic = strings.TrimSpace(topic)
	address = strings.TrimSpace(address)
	if topic == "" || address == "" {
		return fmt.Errorf("missing topic or address")
	}

	client, err := c.newClient(shopDomain, accessToken)
	if err != nil {
		return err
	}
	if _, err := client.Webhook.Create(ctx, goshopify.Webhook{
		Topic:   topic,
		Address: address,
		Format:  "json",
	}); err != nil {
		return fmt.Errorf("create webhook %s: %w", topic, err)
	}
	return nil
}

func domainFromURL(u string) string {
	u = strings.TrimSuffix(strings.TrimSpace(u), "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
