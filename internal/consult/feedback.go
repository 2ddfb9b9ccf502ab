package consult

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/arogya-health/arogya/internal/models"
)

// ErrFeedbackSubmitted is returned when a collector is reused after success.
var ErrFeedbackSubmitted = errors.New("feedback already submitted")

// FeedbackCollector is the one-shot feedback step reachable from the
// health-guide phase. It has an independent lifecycle: its failure never
// touches session state, and a client-side retry of a failed submission is
// allowed.
type FeedbackCollector struct {
	api       API
	sessionID string
	submitted bool
}

// NewFeedbackCollector creates a collector for the given session.
func NewFeedbackCollector(api API, sessionID string) *FeedbackCollector {
	return &FeedbackCollector{api: api, sessionID: sessionID}
}

// Submitted reports whether a submission has succeeded.
func (f *FeedbackCollector) Submitted() bool {
	return f.submitted
}

// Submit validates and submits the feedback. Validation failures are rejected
// before any network call. A successful submission closes the collector.
func (f *FeedbackCollector) Submit(ctx context.Context, req models.CreateFeedbackRequest) error {
	if f.submitted {
		return ErrFeedbackSubmitted
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := f.api.SubmitFeedback(ctx, f.sessionID, req); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	f.submitted = true
	slog.Debug("FeedbackCollector.Submit: feedback recorded", "session_id", f.sessionID, "rating", req.Rating)
	return nil
}
