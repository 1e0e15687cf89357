package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oddwes/ridesofjulian/internal/export"
	"github.com/oddwes/ridesofjulian/internal/provider/strava"
	"github.com/oddwes/ridesofjulian/internal/token"
)

func (a *app) streamsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streams",
		Short: "Work with Strava activity streams",
	}

	var (
		format  string
		outPath string
		ftp     float64
	)
	exportCmd := &cobra.Command{
		Use:   "export <activity-id>",
		Short: "Export an activity's streams as CSV or Parquet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("activity id must be numeric: %w", err)
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

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
			set, err := strava.New(a.cfg.StravaBaseURL, helper, a.httpClient).Streams(ctx, id)
			if err != nil {
				return err
			}
			samples := export.Samples(*set)

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				file, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, samples); err != nil {
				return err
			}
			if outPath != "" && outPath != "-" {
				return printJSON(cmd.ErrOrStderr(), export.Summarize(samples, ftp))
			}
			return nil
		},
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "Output format: csv or parquet")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().Float64Var(&ftp, "ftp", 0, "FTP used for the time-in-zone summary")

	cmd.AddCommand(exportCmd)
	return cmd
}
