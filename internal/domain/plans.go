package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// maxPlanWeeks bounds a single plan generation request.
const maxPlanWeeks = 12

// PlanRequest describes a plan generation request.
type PlanRequest struct {
	StartDate time.Time
	Weeks     int
	Goal      string
}

// Validate checks the required request fields.
func (r PlanRequest) Validate() error {
	if r.StartDate.IsZero() {
		return Invalid("start_date", "is required")
	}
	if r.Weeks <= 0 || r.Weeks > maxPlanWeeks {
		return Invalid("weeks", fmt.Sprintf("must be between 1 and %d", maxPlanWeeks))
	}
	if strings.TrimSpace(r.Goal) == "" {
		return Invalid("goal", "is required")
	}
	return nil
}

func (r PlanRequest) prompt(ftp float64, hasFTP bool) string {
	end := CalendarDate(r.StartDate).AddDate(0, 0, 7*r.Weeks-1)
	ftpLine := "FTP: unknown"
	if hasFTP {
		ftpLine = fmt.Sprintf("FTP: %.0f W", ftp)
	}
	return fmt.Sprintf(`Goal: %s
%s
Plan window: %s to %s (%d weeks)
Respond with JSON only: {"workouts":[{"date":"YYYY-MM-DD","title":"...","intervals":[{"name":"...","duration":seconds,"power_min":watts,"power_max":watts}]}]}`,
		strings.TrimSpace(r.Goal), ftpLine,
		CalendarDate(r.StartDate).Format(DateLayout), end.Format(DateLayout), r.Weeks)
}

type generatedPlan struct {
	Workouts []generatedWorkout `json:"workouts"`
}

type generatedWorkout struct {
	Date      string     `json:"date"`
	Title     string     `json:"title"`
	Intervals []Interval `json:"intervals"`
}

// ParseGeneratedPlan decodes the completion text into ride workouts. Markdown
// code fences around the JSON body are tolerated.
func ParseGeneratedPlan(text string) ([]RideWorkout, error) {
	body := strings.TrimSpace(text)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var plan generatedPlan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return nil, fmt.Errorf("decode generated plan: %w", err)
	}
	if len(plan.Workouts) == 0 {
		return nil, errors.New("generated plan has no workouts")
	}

	rides := make([]RideWorkout, 0, len(plan.Workouts))
	for _, w := range plan.Workouts {
		date, err := ParseDate(w.Date)
		if err != nil {
			return nil, fmt.Errorf("generated workout %q: %w", w.Title, err)
		}
		ride := RideWorkout{Title: w.Title, Date: date, Intervals: w.Intervals}
		if err := ride.Validate(); err != nil {
			return nil, fmt.Errorf("generated workout %q: %w", w.Title, err)
		}
		rides = append(rides, ride)
	}
	return rides, nil
}

// GeneratePlan asks the completion service for a training plan and appends
// every generated ride to its schedule row.
func (s *Service) GeneratePlan(ctx context.Context, session Session, req PlanRequest) ([]RideWorkout, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	history, err := s.FTPHistory(ctx, session)
	if err != nil {
		return nil, err
	}
	ftp, hasFTP := history.At(req.StartDate)

	text, err := s.completer.Complete(ctx, s.prompts.Plan, req.prompt(ftp, hasFTP))
	if err != nil {
		return nil, Downstream("llm", err)
	}
	rides, err := ParseGeneratedPlan(text)
	if err != nil {
		return nil, Downstream("llm", err)
	}

	added := make([]RideWorkout, 0, len(rides))
	for _, ride := range rides {
		saved, err := s.AddRide(ctx, session, ride.Date, ride)
		if err != nil {
			return added, err
		}
		added = append(added, *saved)
	}
	return added, nil
}
