package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/oddwes/ridesofjulian/internal/domain"
	"github.com/oddwes/ridesofjulian/internal/provider/wahoo"
	"github.com/oddwes/ridesofjulian/internal/token"
)

type plannedWorkout struct {
	Workout   *wahoo.Workout    `json:"workout"`
	Plan      *wahoo.Plan       `json:"plan,omitempty"`
	Intervals []domain.Interval `json:"intervals,omitempty"`
}

func (a *app) wahooCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wahoo",
		Short: "Inspect and manage planned Wahoo workouts",
	}

	var from string
	planned := &cobra.Command{
		Use:   "planned",
		Short: "List planned workouts starting on or after --from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now().UTC().Truncate(24 * time.Hour)
			if from != "" {
				parsed, err := domain.ParseDate(from)
				if err != nil {
					return err
				}
				start = parsed
			}
			return a.withWahoo(cmd, func(ctx context.Context, client *wahoo.Client) error {
				workouts, err := client.PlannedWorkouts(ctx, start)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), workouts)
			})
		},
	}
	planned.Flags().StringVar(&from, "from", "", "First day to include, YYYY-MM-DD (default today)")

	show := &cobra.Command{
		Use:   "show <workout-id>",
		Short: "Show a workout with its plan intervals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkoutID(args[0])
			if err != nil {
				return err
			}
			return a.withWahoo(cmd, func(ctx context.Context, client *wahoo.Client) error {
				workout, err := client.Workout(ctx, id)
				if err != nil {
					return err
				}
				out := plannedWorkout{Workout: workout}
				if workout.PlanID != nil {
					plan, err := client.Plan(ctx, *workout.PlanID)
					if err != nil {
						return err
					}
					doc, err := client.PlanIntervals(ctx, *plan)
					if err != nil {
						return err
					}
					out.Plan = plan
					out.Intervals = wahoo.RideFromPlan(*doc)
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <workout-id>",
		Short: "Delete a scheduled workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseWorkoutID(args[0])
			if err != nil {
				return err
			}
			return a.withWahoo(cmd, func(ctx context.Context, client *wahoo.Client) error {
				if err := client.DeleteWorkout(ctx, id); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted workout %d\n", id)
				return err
			})
		},
	}

	cmd.AddCommand(planned, show, del)
	return cmd
}

// withWahoo runs fn with a Wahoo client on the cached credentials.
func (a *app) withWahoo(cmd *cobra.Command, fn func(ctx context.Context, client *wahoo.Client) error) error {
	ctx, cancel := a.context(cmd)
	defer cancel()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	helper, err := a.helper(store, token.ProviderWahoo)
	if err != nil {
		return err
	}
	return fn(ctx, wahoo.New(a.cfg.WahooBaseURL, helper, a.httpClient))
}

func parseWorkoutID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("workout id must be numeric: %w", err)
	}
	return id, nil
}
