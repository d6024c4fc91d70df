package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"shopkit/pkg/shopify"
)

var webhookFlags struct {
	url     string
	topic   string
	shop    string
	secret  string
	payload string
	id      string
}

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "POST a signed webhook to the local server",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := webhookFlags
		secret, err := secretOrConfig(f.secret)
		if err != nil {
			return err
		}
		if f.url == "" {
			f.url = localURL("/webhook/shop/redact")
		}
		if f.id == "" {
			f.id = uuid.NewString()
		}

		body := []byte(fmt.Sprintf(`{"shop_domain":%q}`, f.shop))
		if f.payload != "" {
			if body, err = os.ReadFile(f.payload); err != nil {
				return fmt.Errorf("read payload: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, f.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("new request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Topic", f.topic)
		req.Header.Set("X-Shopify-Shop-Domain", f.shop)
		req.Header.Set("X-Shopify-Hmac-Sha256", shopify.SignWebhook(secret, body))
		req.Header.Set("X-Shopify-Webhook-Id", f.id)

		c := &http.Client{Timeout: 10 * time.Second}
		resp, err := c.Do(req)
		if err != nil {
			return fmt.Errorf("post: %w", err)
		}
		defer resp.Body.Close()

		out, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(cmd.OutOrStdout(), "status=%d\n%s\n", resp.StatusCode, string(out))
		return nil
	},
}

func init() {
	fl := webhookCmd.Flags()
	fl.StringVar(&webhookFlags.url, "url", "", "webhook endpoint (defaults to the local shop/redact route)")
	fl.StringVar(&webhookFlags.topic, "topic", "shop/redact", "X-Shopify-Topic")
	fl.StringVar(&webhookFlags.shop, "shop", "example.myshopify.com", "X-Shopify-Shop-Domain")
	fl.StringVar(&webhookFlags.secret, "secret", "", "signing secret (defaults to SHOPIFY_API_SECRET)")
	fl.StringVar(&webhookFlags.payload, "payload", "", "path to a json payload file")
	fl.StringVar(&webhookFlags.id, "id", "", "X-Shopify-Webhook-Id (random when empty)")
}
