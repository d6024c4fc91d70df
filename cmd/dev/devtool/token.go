package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shopkit/pkg/shopify"
)

var tokenFlags struct {
	granularity string
	secret      string
}

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint an internal hash token for subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := shopify.ParseGranularity(tokenFlags.granularity)
		if err != nil {
			return err
		}
		secret, err := secretOrConfig(tokenFlags.secret)
		if err != nil {
			return err
		}
		tok, err := shopify.HashTokens{Secret: secret, Location: cfg.Timezone}.Mint(args[0], g)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.granularity, "granularity", string(shopify.Daily), "hourly, daily or monthly")
	tokenCmd.Flags().StringVar(&tokenFlags.secret, "secret", "", "signing secret (defaults to SHOPIFY_API_SECRET)")
}
