package consult

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arogya-health/arogya/internal/models"
)

// Bootstrapper resolves the selectable languages and creates a session bound
// to a chosen language. It produces the (session, language) pair everything
// downstream consumes.
type Bootstrapper struct {
	api API
}

// NewBootstrapper creates a bootstrapper over the given API.
func NewBootstrapper(api API) *Bootstrapper {
	return &Bootstrapper{api: api}
}

// StartResult is the outcome of a successful bootstrap.
type StartResult struct {
	Session  *models.Session
	Language models.Language
	// Welcome is the localized greeting the server emits when the language is
	// bound; it seeds the transcript.
	Welcome *models.Message
}

// Languages fetches the selectable language reference data. A failure is
// recoverable: selection stays unavailable until a retry succeeds.
func (b *Bootstrapper) Languages(ctx context.Context) ([]models.Language, error) {
	langs, err := b.api.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load languages: %w", err)
	}
	return langs, nil
}

// Start creates a session and binds the chosen language to it, two dependent
// calls. The pair is not atomic: when the bind fails the partial session id
// is discarded and a single combined failure is reported. The orphaned
// server-side session is an accepted leak — it is neither retried nor cleaned
// up here.
func (b *Bootstrapper) Start(ctx context.Context, language models.Language) (*StartResult, error) {
	session, err := b.api.CreateSession(ctx, models.CreateSessionRequest{Language: language.Code})
	if err != nil {
		return nil, fmt.Errorf("start consultation: %w", err)
	}

	welcome, err := b.api.BindLanguage(ctx, session.ID, language.Code)
	if err != nil {
		slog.Warn("Bootstrapper.Start: language bind failed, discarding session",
			"session_id", session.ID, "error", err)
		return nil, fmt.Errorf("start consultation: %w", err)
	}

	// The bind advanced the server-side stage; reflect it without refetching.
	session.Language = language.Code
	session.CurrentStage = models.StageGreeting

	slog.Debug("Bootstrapper.Start: session ready", "session_id", session.ID, "language", language.Code)
	return &StartResult{Session: session, Language: language, Welcome: welcome}, nil
}
