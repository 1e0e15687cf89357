package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oddwes/ridesofjulian/internal/token"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Link provider accounts",
	}

	var state string
	urlCmd := &cobra.Command{
		Use:   "url <strava|wahoo>",
		Short: "Print the provider consent URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := a.providerConfig(token.Provider(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token.OAuthConfig(token.Provider(args[0]), pc.Client).AuthCodeURL(state))
			return nil
		},
	}
	urlCmd.Flags().StringVar(&state, "state", "ridectl", "OAuth state parameter")

	exchangeCmd := &cobra.Command{
		Use:   "exchange <strava|wahoo> <code>",
		Short: "Trade an authorization code for tokens and cache them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			helper, err := a.helper(store, token.Provider(args[0]))
			if err != nil {
				return err
			}
			creds, err := helper.Exchange(ctx, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s linked, token valid until %s\n", args[0], creds.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether each provider has a usable token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, p := range []token.Provider{token.ProviderStrava, token.ProviderWahoo} {
				helper, err := a.helper(store, p)
				if err != nil {
					return err
				}
				status := "not linked"
				if helper.EnsureValidToken(ctx) {
					status = "ok"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-7s %s\n", p, status)
			}
			return nil
		},
	}

	cmd.AddCommand(urlCmd, exchangeCmd, statusCmd)
	return cmd
}
