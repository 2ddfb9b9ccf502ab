package consult

import (
	"context"
	"errors"

	"github.com/arogya-health/arogya/internal/models"
)

// fakeAPI is a scripted API double. Each operation returns the queued value
// or the configured error, and counts its calls.
type fakeAPI struct {
	languages    []models.Language
	languagesErr error

	createdSession *models.Session
	createErr      error

	welcome *models.Message
	bindErr error

	session    *models.Session
	sessionErr error

	history    []models.Message
	historyErr error

	exchanges    []*models.ExchangeResponse
	exchangeErr  error
	exchangeCall int

	report    *models.PDFReportResponse
	reportErr error

	feedbackErr   error
	feedbackCalls int
}

func (f *fakeAPI) ListLanguages(ctx context.Context) ([]models.Language, error) {
	return f.languages, f.languagesErr
}

func (f *fakeAPI) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createdSession, nil
}

func (f *fakeAPI) BindLanguage(ctx context.Context, sessionID string, code models.LanguageCode) (*models.Message, error) {
	if f.bindErr != nil {
		return nil, f.bindErr
	}
	return f.welcome, nil
}

func (f *fakeAPI) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeAPI) GetMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	return f.history, f.historyErr
}

func (f *fakeAPI) SendMessage(ctx context.Context, sessionID string, req models.CreateMessageRequest) (*models.ExchangeResponse, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	if f.exchangeCall >= len(f.exchanges) {
		return nil, errors.New("fakeAPI: no exchange scripted")
	}
	resp := f.exchanges[f.exchangeCall]
	f.exchangeCall++
	return resp, nil
}

func (f *fakeAPI) GenerateReport(ctx context.Context, sessionID string, includeHistory bool) (*models.PDFReportResponse, error) {
	return f.report, f.reportErr
}

func (f *fakeAPI) SubmitFeedback(ctx context.Context, sessionID string, req models.CreateFeedbackRequest) error {
	f.feedbackCalls++
	return f.feedbackErr
}

// startedOrchestrator returns an orchestrator already in the conversation
// phase with the given fake behind it.
func startedOrchestrator(f *fakeAPI) *Orchestrator {
	o := New(f)
	session := &models.Session{ID: "sess-1", Language: models.LanguageEnglish, CurrentStage: models.StageGreeting}
	welcome := &models.Message{ID: "m-welcome", SessionID: "sess-1", Sender: models.SenderAssistant, Content: "Hello! I'm Dr. Arogya."}
	_ = o.Begin(&StartResult{
		Session:  session,
		Language: models.Language{Code: models.LanguageEnglish, Name: "English", NativeName: "English"},
		Welcome:  welcome,
	})
	return o
}

// exchangeReply scripts one normal (no-branch) exchange response.
func exchangeReply(content string, stage models.Stage) *models.ExchangeResponse {
	return &models.ExchangeResponse{
		Message: models.Message{ID: "m-" + content, SessionID: "sess-1", Sender: models.SenderAssistant, Content: content},
		Session: models.Session{ID: "sess-1", Language: models.LanguageEnglish, CurrentStage: stage},
	}
}
