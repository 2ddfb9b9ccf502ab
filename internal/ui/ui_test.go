package ui

import (
	"context"
	"testing"
	"time"

	"github.com/arogya-health/arogya/internal/consult"
	"github.com/arogya-health/arogya/internal/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI satisfies consult.API without a server; the UI tests drive the
// model with messages directly, so most methods are never reached.
type stubAPI struct{}

func (stubAPI) ListLanguages(ctx context.Context) ([]models.Language, error) {
	return []models.Language{{Code: models.LanguageEnglish, Name: "English", NativeName: "English"}}, nil
}
func (stubAPI) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	return &models.Session{ID: "sess-1"}, nil
}
func (stubAPI) BindLanguage(ctx context.Context, sessionID string, code models.LanguageCode) (*models.Message, error) {
	return &models.Message{ID: "w-1", Sender: models.SenderAssistant, Content: "Hello!"}, nil
}
func (stubAPI) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return &models.Session{ID: sessionID}, nil
}
func (stubAPI) GetMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	return nil, nil
}
func (stubAPI) SendMessage(ctx context.Context, sessionID string, req models.CreateMessageRequest) (*models.ExchangeResponse, error) {
	return nil, nil
}
func (stubAPI) GenerateReport(ctx context.Context, sessionID string, includeHistory bool) (*models.PDFReportResponse, error) {
	return &models.PDFReportResponse{PDFURL: "/reports/r.pdf", Filename: "r.pdf"}, nil
}
func (stubAPI) SubmitFeedback(ctx context.Context, sessionID string, req models.CreateFeedbackRequest) error {
	return nil
}

func startResult() *consult.StartResult {
	return &consult.StartResult{
		Session:  &models.Session{ID: "sess-1", Language: models.LanguageEnglish, CurrentStage: models.StageGreeting},
		Language: models.Language{Code: models.LanguageEnglish, Name: "English", NativeName: "English"},
		Welcome:  &models.Message{ID: "w-1", SessionID: "sess-1", Sender: models.SenderAssistant, Content: "Hello! I'm Dr. Arogya."},
	}
}

// startedModel returns a model that has entered the chat screen.
func startedModel(t *testing.T) Model {
	t.Helper()
	m := NewModel(stubAPI{})
	updated, _ := m.Update(languagesMsg{{Code: models.LanguageEnglish, Name: "English", NativeName: "English"}})
	m = updated.(Model)
	updated, _ = m.Update(startedMsg{startResult()})
	m = updated.(Model)
	require.Equal(t, screenChat, m.screen)
	return m
}

func exchangeReply(content string, stage models.Stage) *models.ExchangeResponse {
	return &models.ExchangeResponse{
		Message: models.Message{ID: "a-1", SessionID: "sess-1", Sender: models.SenderAssistant, Content: content, Timestamp: time.Now()},
		Session: models.Session{ID: "sess-1", Language: models.LanguageEnglish, CurrentStage: stage},
	}
}

func TestLanguageScreenSelection(t *testing.T) {
	m := NewModel(stubAPI{})
	assert.Equal(t, screenLanguage, m.screen)
	assert.True(t, m.loading)

	updated, _ := m.Update(languagesMsg{
		{Code: models.LanguageEnglish, Name: "English", NativeName: "English"},
		{Code: models.LanguageHindi, Name: "Hindi", NativeName: "हिन्दी"},
	})
	m = updated.(Model)
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "Hindi")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	assert.Equal(t, 1, m.cursor)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.True(t, m.loading, "selecting a language starts the bootstrap")
	assert.NotNil(t, cmd)
}

func TestStartedEntersChatWithWelcome(t *testing.T) {
	m := startedModel(t)
	assert.Contains(t, m.View(), "Dr. Arogya")
	assert.Len(t, m.orch.Messages(), 1)
}

func TestSendAndCompleteExchange(t *testing.T) {
	m := startedModel(t)
	m.input.SetValue("I have a headache")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.True(t, m.orch.InFlight())
	msgs := m.orch.Messages()
	require.Len(t, msgs, 2, "optimistic append before the reply arrives")
	assert.Equal(t, models.SenderUser, msgs[1].Sender)

	updated, _ = m.Update(exchangeMsg{userID: msgs[1].ID, resp: exchangeReply("How long has it hurt?", models.StageSymptomInquiry)})
	m = updated.(Model)
	assert.False(t, m.loading)
	assert.False(t, m.orch.InFlight())
	assert.Len(t, m.orch.Messages(), 3)
	assert.Equal(t, consult.PhaseConversation, m.orch.Phase())
	assert.Contains(t, m.View(), "Understanding your symptoms")
}

func TestFailedExchangeRestoresInput(t *testing.T) {
	m := startedModel(t)
	m.input.SetValue("my stomach hurts")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	msgs := m.orch.Messages()
	require.Len(t, msgs, 2)

	updated, _ = m.Update(exchangeErrMsg{userID: msgs[1].ID, err: context.DeadlineExceeded})
	m = updated.(Model)
	assert.Len(t, m.orch.Messages(), 1, "compensating rollback removes the optimistic message")
	assert.Equal(t, "my stomach hurts", m.input.Value(), "failed content is preserved for retry")
	assert.NotEmpty(t, m.errText)
}

func TestEmergencyOverlayAndDismiss(t *testing.T) {
	m := startedModel(t)
	m.input.SetValue("I have chest pain")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	msgs := m.orch.Messages()

	resp := exchangeReply("EMERGENCY ALERT", models.StageEmergencyAlert)
	resp.EmergencyAlert = true
	resp.Session.EmergencyDetected = true
	updated, _ = m.Update(exchangeMsg{userID: msgs[1].ID, resp: resp})
	m = updated.(Model)

	require.Equal(t, consult.PhaseEmergency, m.orch.Phase())
	assert.Contains(t, m.View(), "EMERGENCY")

	// Any key acknowledges the alert but the branch stays terminal.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.True(t, m.orch.EmergencyDismissed())
	assert.Equal(t, consult.PhaseEmergency, m.orch.Phase())
	assert.Contains(t, m.View(), "consultation is closed")

	// Further sends are rejected.
	m.input.SetValue("are you sure?")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.Len(t, m.orch.Messages(), len(msgs)+1, "no new user message after the branch")
}

func TestHealthGuideBranchAndFeedback(t *testing.T) {
	m := startedModel(t)
	m.input.SetValue("no other symptoms")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	msgs := m.orch.Messages()

	resp := exchangeReply("Here is your health guide.", models.StageFeedback)
	resp.HealthGuide = &models.HealthGuide{
		SessionID:       "sess-1",
		SymptomSummary:  "Reported symptoms: headache",
		LifestyleTips:   []string{"Get adequate sleep"},
		WhenToSeeDoctor: []string{"If symptoms persist"},
	}
	updated, _ = m.Update(exchangeMsg{userID: msgs[1].ID, resp: resp})
	m = updated.(Model)

	require.Equal(t, screenGuide, m.screen)
	require.Equal(t, consult.PhaseHealthGuide, m.orch.Phase())
	assert.Contains(t, m.View(), "Your Health Guide")
	assert.Contains(t, m.viewport.View(), "headache")

	// f opens the feedback form.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	m = updated.(Model)
	require.Equal(t, screenFeedback, m.screen)

	// Submitting without a rating is rejected locally.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	assert.NotEmpty(t, m.errText)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	m = updated.(Model)
	assert.Equal(t, 4, m.rating)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	updated, _ = m.Update(feedbackMsg{})
	m = updated.(Model)
	assert.True(t, m.feedbackSent)
	assert.Contains(t, m.View(), "Thank you")
}

func TestReportReadyStatus(t *testing.T) {
	m := startedModel(t)
	updated, _ := m.Update(reportMsg(&models.PDFReportResponse{PDFURL: "/reports/health.pdf", Filename: "health.pdf"}))
	m = updated.(Model)
	assert.Contains(t, m.status, "health.pdf")
	assert.Equal(t, "/reports/health.pdf", m.reportURL)
}
