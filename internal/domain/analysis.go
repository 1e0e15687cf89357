package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AnalysisStatus tracks the lifecycle of a ride analysis row.
type AnalysisStatus string

const (
	AnalysisPending  AnalysisStatus = "pending"
	AnalysisComplete AnalysisStatus = "complete"
	AnalysisFailed   AnalysisStatus = "failed"
)

// RideAnalysis is the narrative analysis of one external activity.
type RideAnalysis struct {
	UserID     string         `json:"user_id"`
	ActivityID string         `json:"activity_id"`
	Status     AnalysisStatus `json:"status"`
	Analysis   string         `json:"analysis"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// AnalysisRequest carries the context blobs assembled into the LLM prompt.
type AnalysisRequest struct {
	ActivityID      string
	RideHistory     json.RawMessage
	TrainingPlan    json.RawMessage
	WorkoutPlan     json.RawMessage
	CurrentActivity json.RawMessage
}

// Validate checks the required request fields.
func (r AnalysisRequest) Validate() error {
	if strings.TrimSpace(r.ActivityID) == "" {
		return Invalid("activity_id", "is required")
	}
	if len(bytes.TrimSpace(r.CurrentActivity)) == 0 {
		return Invalid("current_activity", "is required")
	}
	return nil
}

// Prompt assembles the user message sent to the completion service.
func (r AnalysisRequest) Prompt() string {
	var b strings.Builder
	section := func(title string, blob json.RawMessage) {
		b.WriteString(title)
		b.WriteString(":\n")
		if len(bytes.TrimSpace(blob)) == 0 {
			b.WriteString("none")
		} else {
			b.Write(bytes.TrimSpace(blob))
		}
		b.WriteString("\n\n")
	}
	section("Ride history", r.RideHistory)
	section("Training plan", r.TrainingPlan)
	section("Workout plan", r.WorkoutPlan)
	section("Current activity", r.CurrentActivity)
	return strings.TrimSpace(b.String())
}

// GenerateRideAnalysis writes a pending placeholder, asks the completion
// service for an analysis and persists the literal response text.
func (s *Service) GenerateRideAnalysis(ctx context.Context, session Session, req AnalysisRequest) (*RideAnalysis, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pending := RideAnalysis{
		UserID:     session.UserID,
		ActivityID: req.ActivityID,
		Status:     AnalysisPending,
		UpdatedAt:  s.now(),
	}
	if err := s.store.SaveAnalysis(ctx, pending); err != nil {
		s.logger.Warn("pending analysis write failed",
			zap.String("user_id", session.UserID),
			zap.String("activity_id", req.ActivityID),
			zap.Error(err))
	}

	text, err := s.completer.Complete(ctx, s.prompts.Analysis, req.Prompt())
	if err != nil {
		failed := pending
		failed.Status = AnalysisFailed
		failed.UpdatedAt = s.now()
		if saveErr := s.store.SaveAnalysis(ctx, failed); saveErr != nil {
			s.logger.Warn("failed analysis write failed", zap.String("activity_id", req.ActivityID), zap.Error(saveErr))
		}
		return nil, Downstream("llm", err)
	}

	result := RideAnalysis{
		UserID:     session.UserID,
		ActivityID: req.ActivityID,
		Status:     AnalysisComplete,
		Analysis:   text,
		UpdatedAt:  s.now(),
	}
	if err := s.store.SaveAnalysis(ctx, result); err != nil {
		return nil, Downstream("store", err)
	}
	return &result, nil
}

// GetRideAnalysis fetches a stored analysis.
func (s *Service) GetRideAnalysis(ctx context.Context, session Session, activityID string) (*RideAnalysis, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	analysis, err := s.store.GetAnalysis(ctx, session.UserID, activityID)
	if err != nil {
		return nil, Downstream("store", err)
	}
	if analysis == nil {
		return nil, ErrNotFound
	}
	return analysis, nil
}
