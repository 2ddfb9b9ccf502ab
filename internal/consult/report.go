package consult

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arogya-health/arogya/internal/models"
)

// ReportTrigger requests the derived PDF artifact for a session. The request
// is fire-and-forget with respect to the state machine: a failure surfaces as
// a standalone error and leaves session and conversation state untouched.
type ReportTrigger struct {
	api API
}

// NewReportTrigger creates a report trigger over the given API.
func NewReportTrigger(api API) *ReportTrigger {
	return &ReportTrigger{api: api}
}

// Generate asks the server to render the report and returns its download
// location.
func (r *ReportTrigger) Generate(ctx context.Context, sessionID string, includeHistory bool) (*models.PDFReportResponse, error) {
	report, err := r.api.GenerateReport(ctx, sessionID, includeHistory)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	slog.Debug("ReportTrigger.Generate: report ready", "session_id", sessionID, "filename", report.Filename)
	return report, nil
}
