// Package consult implements the consultation session orchestrator: the
// client-side state machine that owns the session and message history,
// performs message exchanges with optimistic updates, and branches the flow
// into the emergency or health-guide terminal phases.
package consult

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arogya-health/arogya/internal/models"
)

// Phase is the orchestrator's view of where the consultation lifecycle is.
type Phase string

const (
	PhaseLanguageSelection Phase = "language_selection"
	PhaseConversation      Phase = "conversation"
	PhaseEmergency         Phase = "emergency"
	PhaseHealthGuide       Phase = "health_guide"
)

// Error variables for orchestrator state violations.
var (
	ErrAlreadyStarted     = errors.New("consultation already started")
	ErrConversationClosed = errors.New("conversation has branched to a terminal phase")
	ErrNoSession          = errors.New("no active session")
)

// API is the surface of the consultation server this package depends on.
// client.Client satisfies it.
type API interface {
	ListLanguages(ctx context.Context) ([]models.Language, error)
	CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error)
	BindLanguage(ctx context.Context, sessionID string, code models.LanguageCode) (*models.Message, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	GetMessages(ctx context.Context, sessionID string) ([]models.Message, error)
	SendMessage(ctx context.Context, sessionID string, req models.CreateMessageRequest) (*models.ExchangeResponse, error)
	GenerateReport(ctx context.Context, sessionID string, includeHistory bool) (*models.PDFReportResponse, error)
	SubmitFeedback(ctx context.Context, sessionID string, req models.CreateFeedbackRequest) error
}

// Orchestrator is the single source of truth for the consultation phase and
// the sole owner of the session snapshot and message sequence. It performs no
// network I/O of its own outside the exchange and load operations; phase
// transitions happen only in reaction to bootstrapper and exchange results.
//
// Transitions: language_selection → conversation → emergency | health_guide.
// The bootstrap is single-use — no transition ever returns to
// language_selection — and emergency wins over health_guide when an exchange
// response somehow carries both signals.
type Orchestrator struct {
	api API

	phase    Phase
	session  *models.Session
	language models.Language
	messages []models.Message
	guide    *models.HealthGuide

	// emergencySeen stays true once an emergency signal has been observed,
	// even after the user dismisses the alert overlay. It is derived only
	// from exchange responses, never reconstructed from stage text.
	emergencySeen      bool
	emergencyDismissed bool

	// inFlight is the single-slot exchange guard: sends for this session are
	// strictly sequential.
	inFlight bool
}

// New creates an orchestrator in the language_selection phase.
func New(api API) *Orchestrator {
	return &Orchestrator{api: api, phase: PhaseLanguageSelection}
}

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	return o.phase
}

// Session returns the current session snapshot, or nil before bootstrap.
func (o *Orchestrator) Session() *models.Session {
	return o.session
}

// Language returns the language bound at bootstrap.
func (o *Orchestrator) Language() models.Language {
	return o.language
}

// Messages returns a read-only copy of the ordered message sequence.
func (o *Orchestrator) Messages() []models.Message {
	out := make([]models.Message, len(o.messages))
	copy(out, o.messages)
	return out
}

// Guide returns the health guide delivered by the branching exchange, or nil.
// The value is exactly the one received from the server, never mutated.
func (o *Orchestrator) Guide() *models.HealthGuide {
	return o.guide
}

// EmergencySeen reports whether an emergency signal was ever observed this
// session.
func (o *Orchestrator) EmergencySeen() bool {
	return o.emergencySeen
}

// EmergencyDismissed reports whether the user has acknowledged the alert.
func (o *Orchestrator) EmergencyDismissed() bool {
	return o.emergencyDismissed
}

// InFlight reports whether an exchange is currently outstanding.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight
}

// Progress projects the current stage for UI feedback.
func (o *Orchestrator) Progress() Progress {
	return Project(o.session)
}

// Begin transitions language_selection → conversation with the session and
// language produced by the bootstrapper. The optional welcome message seeds
// the transcript. Begin is single-use; once the orchestrator has left
// language_selection it never returns.
func (o *Orchestrator) Begin(start *StartResult) error {
	if o.phase != PhaseLanguageSelection {
		return ErrAlreadyStarted
	}
	o.session = start.Session
	o.language = start.Language
	if start.Welcome != nil {
		o.messages = append(o.messages, *start.Welcome)
	}
	o.phase = PhaseConversation
	slog.Debug("Orchestrator.Begin: entered conversation",
		"session_id", start.Session.ID, "language", start.Language.Code)
	return nil
}

// LoadSession refreshes the session snapshot once at conversation entry. A
// failure is logged and degraded to "unknown": the held snapshot stays as-is
// and the conversation proceeds.
func (o *Orchestrator) LoadSession(ctx context.Context) {
	if o.session == nil {
		return
	}
	session, err := o.api.GetSession(ctx, o.session.ID)
	if err != nil {
		slog.Warn("Orchestrator.LoadSession: degraded to held snapshot", "error", err)
		return
	}
	o.session = session
}

// LoadHistory loads the persisted message history once at conversation
// entry, replacing any locally seeded transcript. A failure is logged and
// degraded to the current local sequence.
func (o *Orchestrator) LoadHistory(ctx context.Context) {
	if o.session == nil {
		return
	}
	msgs, err := o.api.GetMessages(ctx, o.session.ID)
	if err != nil {
		slog.Warn("Orchestrator.LoadHistory: degraded to local transcript", "error", err)
		return
	}
	if len(msgs) > 0 {
		o.messages = msgs
	}
}

// ReplaceSession installs a session snapshot fetched off the event loop.
// Event-driven hosts use it in place of LoadSession; the replacement is
// wholesale, matching the exchange reconciliation rule.
func (o *Orchestrator) ReplaceSession(session *models.Session) {
	if o.session == nil || session == nil {
		return
	}
	o.session = session
}

// ReplaceHistory installs a transcript fetched off the event loop, replacing
// the locally seeded one. Empty fetches are ignored, like LoadHistory.
func (o *Orchestrator) ReplaceHistory(msgs []models.Message) {
	if o.session == nil || len(msgs) == 0 {
		return
	}
	o.messages = msgs
}

// DismissEmergency acknowledges the emergency alert. The transcript becomes
// visible again but the phase stays terminal: the branch is not forgotten and
// the main flow dispatches no further exchanges.
func (o *Orchestrator) DismissEmergency() {
	if o.phase == PhaseEmergency {
		o.emergencyDismissed = true
	}
}
