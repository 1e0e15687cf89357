package main

import (
	"github.com/spf13/cobra"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/fitimport"
	"github.com/oddwes/ridesofjulian/internal/training"
)

type fitSummary struct {
	Activity        domain.Activity `json:"activity"`
	PowerSamples    int             `json:"power_samples"`
	NormalizedPower float64         `json:"normalized_power"`
	TSS             int             `json:"tss,omitempty"`
	TimeInZones     map[int]int     `json:"time_in_zones,omitempty"`
}

func (a *app) fitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Inspect FIT activity files",
	}

	var ftp float64
	summaryCmd := &cobra.Command{
		Use:   "summary <file.fit>",
		Short: "Decode a FIT file and print its totals and power load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ride, err := fitimport.DecodeFile(args[0])
			if err != nil {
				return err
			}
			out := fitSummary{
				Activity:        ride.Activity,
				PowerSamples:    len(ride.Power),
				NormalizedPower: training.NormalizedPower(ride.Power),
			}
			if ftp > 0 {
				out.TSS = training.TSS(ride.Activity, ftp)
				out.TimeInZones = training.StreamTimeInZones(ride.Power, ftp)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	summaryCmd.Flags().Float64Var(&ftp, "ftp", 0, "FTP used for TSS and time in zones")

	cmd.AddCommand(summaryCmd)
	return cmd
}
