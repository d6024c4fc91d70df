package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopkit/pkg/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:          "devtool",
	Short:        "Local development helpers for shopkit",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		return err
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd, webhookCmd, signCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func localURL(path string) string {
	if len(cfg.HTTPAddr) > 0 && cfg.HTTPAddr[0] == ':' {
		return "http://localhost" + cfg.HTTPAddr + path
	}
	return "http://localhost:8081" + path
}

func secretOrConfig(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.Shopify.APISecret == "" {
		return "", fmt.Errorf("missing --secret and SHOPIFY_API_SECRET")
	}
	return cfg.Shopify.APISecret, nil
}
