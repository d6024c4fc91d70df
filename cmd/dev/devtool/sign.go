package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shopkit/pkg/shopify"
)

var signFlags struct {
	shop   string
	host   string
	secret string
	proxy  bool
}

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print a signed embedded-app (or app proxy) URL for the local server",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := secretOrConfig(signFlags.secret)
		if err != nil {
			return err
		}
		now := strconv.FormatInt(time.Now().Unix(), 10)

		q := url.Values{}
		q.Set("shop", signFlags.shop)
		q.Set("timestamp", now)
		if signFlags.proxy {
			q.Set("path_prefix", "/apps/shopkit")
			q.Set("signature", shopify.SignProxy(secret, q))
			fmt.Fprintln(cmd.OutOrStdout(), localURL("/proxy/ping")+"?"+q.Encode())
			return nil
		}

		q.Set("host", signFlags.host)
		q.Set("session", "devtool")
		q.Set("hmac", shopify.SignQuery(secret, q))
		fmt.Fprintln(cmd.OutOrStdout(), localURL("/")+"?"+q.Encode())
		return nil
	},
}

func init() {
	fl := signCmd.Flags()
	fl.StringVar(&signFlags.shop, "shop", "example.myshopify.com", "shop domain")
	fl.StringVar(&signFlags.host, "host", "YWRtaW4uc2hvcGlmeS5jb20vc3RvcmUvZXhhbXBsZQ", "base64 App Bridge host")
	fl.StringVar(&signFlags.secret, "secret", "", "signing secret (defaults to SHOPIFY_API_SECRET)")
	fl.BoolVar(&signFlags.proxy, "proxy", false, "sign an app proxy request instead")
}
