package consult

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arogya-health/arogya/internal/models"
	"github.com/google/uuid"
)

// The exchange engine executes one user-message round trip with optimistic
// concurrency: the user message is appended locally before the network call,
// then either committed alongside the assistant reply or removed again by a
// compensating delete when the exchange fails.
//
// The orchestrator is owned by a single event loop and is not safe for
// concurrent use. Event-driven hosts split an exchange into BeginExchange
// (on the loop), the network call (off the loop) and CompleteExchange or
// FailExchange (back on the loop); SendMessage composes the three for
// blocking callers.

// ExchangeResult is what an exchange resolved to: the committed assistant
// message, the phase the orchestrator is now in, and the branch payload when
// one fired.
type ExchangeResult struct {
	Assistant models.Message
	Phase     Phase
	Guide     *models.HealthGuide
	Emergency bool
}

// ExchangeError reports a failed exchange. Content preserves the user's text
// after the compensating rollback so the caller can offer a retry.
type ExchangeError struct {
	Content string
	Err     error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// BeginExchange validates the content, claims the single exchange slot and
// optimistically appends the user message to the transcript. The returned
// message carries the locally generated id used by FailExchange to roll the
// append back.
func (o *Orchestrator) BeginExchange(content string) (models.Message, error) {
	if o.session == nil {
		return models.Message{}, ErrNoSession
	}
	if o.phase != PhaseConversation {
		return models.Message{}, ErrConversationClosed
	}
	if o.inFlight {
		return models.Message{}, models.ErrExchangeInFlight
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, models.ErrEmptyMessage
	}
	if len(content) > models.MaxMessageContentLength {
		return models.Message{}, models.ErrMessageTooLong
	}

	userMsg := models.Message{
		ID:        uuid.NewString(),
		SessionID: o.session.ID,
		Sender:    models.SenderUser,
		Content:   content,
		Language:  o.language.Code,
		Timestamp: time.Now().UTC(),
	}
	o.messages = append(o.messages, userMsg)
	o.inFlight = true
	slog.Debug("Orchestrator.BeginExchange: optimistic append", "session_id", o.session.ID, "message_id", userMsg.ID)
	return userMsg, nil
}

// CompleteExchange reconciles a successful exchange response: the assistant
// message is appended, the held session is replaced wholesale with the
// returned snapshot, and branch signals transition the phase — emergency
// first, as the safety tie-break. The assistant message is appended even when
// the emergency branch fires; it is the content that triggered the alert.
func (o *Orchestrator) CompleteExchange(resp *models.ExchangeResponse) *ExchangeResult {
	o.inFlight = false
	o.messages = append(o.messages, resp.Message)
	o.session = &resp.Session

	result := &ExchangeResult{Assistant: resp.Message, Phase: o.phase}
	switch {
	case resp.EmergencyAlert:
		o.phase = PhaseEmergency
		o.emergencySeen = true
		result.Phase = PhaseEmergency
		result.Emergency = true
		slog.Info("Orchestrator.CompleteExchange: emergency branch", "session_id", resp.Session.ID)
	case resp.HealthGuide != nil:
		o.phase = PhaseHealthGuide
		o.guide = resp.HealthGuide
		result.Phase = PhaseHealthGuide
		result.Guide = resp.HealthGuide
		slog.Info("Orchestrator.CompleteExchange: health guide branch", "session_id", resp.Session.ID)
	default:
		slog.Debug("Orchestrator.CompleteExchange: conversation continues",
			"session_id", resp.Session.ID, "stage", resp.Session.CurrentStage)
	}
	return result
}

// FailExchange performs the compensating removal of the optimistically
// appended user message and releases the exchange slot. The session snapshot
// is left untouched; no partial update survives a failed exchange. The
// removed content is returned for retry.
func (o *Orchestrator) FailExchange(messageID string) string {
	o.inFlight = false
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].ID == messageID {
			content := o.messages[i].Content
			o.messages = append(o.messages[:i], o.messages[i+1:]...)
			slog.Debug("Orchestrator.FailExchange: rolled back optimistic message", "message_id", messageID)
			return content
		}
	}
	return ""
}

// SendMessage runs a full exchange synchronously: optimistic append, network
// round trip, then commit or compensating rollback. At most one exchange per
// session may be outstanding; callers must not invoke SendMessage again until
// the prior call resolved.
func (o *Orchestrator) SendMessage(ctx context.Context, content string) (*ExchangeResult, error) {
	userMsg, err := o.BeginExchange(content)
	if err != nil {
		return nil, err
	}

	resp, err := o.api.SendMessage(ctx, o.session.ID, models.CreateMessageRequest{
		Content:  userMsg.Content,
		Language: o.language.Code,
	})
	if err != nil {
		preserved := o.FailExchange(userMsg.ID)
		return nil, &ExchangeError{Content: preserved, Err: err}
	}
	return o.CompleteExchange(resp), nil
}
