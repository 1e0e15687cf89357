package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oddwes/ridesofjulian/internal/activitysync"
	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/token"
)

func (a *app) activitiesCmd() *cobra.Command {
	var (
		year    int
		asJSON  bool
		ftpWatt float64
	)
	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List the reconciled Strava and Wahoo activities of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stravaCfg, _ := a.providerConfig(token.ProviderStrava)
			wahooCfg, _ := a.providerConfig(token.ProviderWahoo)
			factory := activitysync.ProviderFactory(store, stravaCfg, wahooCfg, a.httpClient, a.logger)

			activities, err := factory(domain.Session{UserID: a.userID}).Unified(ctx, year)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), activities)
			}

			var history domain.FTPHistory
			if ftpWatt > 0 {
				history = history.With(time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), ftpWatt)
			}
			totals := activitysync.YearTotals(activities, year, history)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tSOURCE\tNAME\tKM\tMIN")
			for _, act := range activities {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\n",
					act.StartDate.Format(domain.DateLayout), act.Source, act.Name, act.Distance/1000, act.MovingTime/60)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d rides, %.0f km, %.0f m climbing, %d h, TSS %d\n",
				totals.Count, totals.Distance/1000, totals.Elevation, totals.MovingTime/3600, totals.TSS)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Calendar year to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print activities as JSON")
	cmd.Flags().Float64Var(&ftpWatt, "ftp", 0, "FTP used for the TSS total")
	return cmd
}
