package main

import (
	"github.com/spf13/cobra"

	"github.com/oddwes/ridesofjulian/internal/provider/strava"
	"github.com/oddwes/ridesofjulian/internal/token"
)

type athleteReport struct {
	Athlete *strava.Athlete `json:"athlete"`
	YTD     strava.Totals   `json:"ytd_ride_totals"`
	Recent  strava.Totals   `json:"recent_ride_totals"`
	All     strava.Totals   `json:"all_ride_totals"`
}

func (a *app) athleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "athlete",
		Short: "Show the linked Strava athlete and their ride totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			helper, err := a.helper(store, token.ProviderStrava)
			if err != nil {
				return err
			}
			client := strava.New(a.cfg.StravaBaseURL, helper, a.httpClient)
			athlete, err := client.Athlete(ctx)
			if err != nil {
				return err
			}
			stats, err := client.AthleteStats(ctx, athlete.ID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), athleteReport{
				Athlete: athlete,
				YTD:     stats.YTDRideTotals,
				Recent:  stats.RecentRideTotals,
				All:     stats.AllRideTotals,
			})
		},
	}
}
