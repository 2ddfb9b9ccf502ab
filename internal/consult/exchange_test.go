package consult

import (
	"context"
	"errors"
	"testing"

	"github.com/arogya-health/arogya/internal/models"
)

func TestSendMessageAppendsUserThenAssistant(t *testing.T) {
	f := &fakeAPI{exchanges: []*models.ExchangeResponse{
		exchangeReply("reply-1", models.StageSymptomInquiry),
		exchangeReply("reply-2", models.StageDetailedAnalysis),
	}}
	o := startedOrchestrator(f)
	preloaded := len(o.Messages())

	ctx := context.Background()
	for i, content := range []string{"I have a fever", "It started two days ago and gets worse at night"} {
		result, err := o.SendMessage(ctx, content)
		if err != nil {
			t.Fatalf("exchange %d failed: %v", i, err)
		}
		if result.Phase != PhaseConversation {
			t.Errorf("exchange %d: expected conversation phase, got %s", i, result.Phase)
		}
	}

	msgs := o.Messages()
	if got, want := len(msgs), preloaded+4; got != want {
		t.Fatalf("expected %d messages, got %d", want, got)
	}
	// After the preloaded welcome, the sequence alternates user/assistant
	// starting with user.
	for i, msg := range msgs[preloaded:] {
		wantSender := models.SenderUser
		if i%2 == 1 {
			wantSender = models.SenderAssistant
		}
		if msg.Sender != wantSender {
			t.Errorf("message %d: expected sender %s, got %s", i, wantSender, msg.Sender)
		}
	}
}

func TestSendMessageReplacesSessionWholesale(t *testing.T) {
	f := &fakeAPI{exchanges: []*models.ExchangeResponse{exchangeReply("noted", models.StageSymptomInquiry)}}
	o := startedOrchestrator(f)

	before := o.Session()
	if _, err := o.SendMessage(context.Background(), "I have a fever"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := o.Session()
	if after == before {
		t.Error("expected session snapshot to be replaced, not mutated in place")
	}
	if after.CurrentStage != models.StageSymptomInquiry {
		t.Errorf("expected stage symptom_inquiry, got %s", after.CurrentStage)
	}
	if p := o.Progress(); p.Percent != 50 || p.Status != "Understanding your symptoms" {
		t.Errorf("expected (50, Understanding your symptoms), got (%d, %s)", p.Percent, p.Status)
	}
}

func TestSendMessageRollbackIsExact(t *testing.T) {
	f := &fakeAPI{exchangeErr: errors.New("connection refused")}
	o := startedOrchestrator(f)
	before := o.Messages()
	sessionBefore := o.Session()

	_, err := o.SendMessage(context.Background(), "I have a headache")
	if err == nil {
		t.Fatal("expected error from failed exchange")
	}
	var exErr *ExchangeError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExchangeError, got %T", err)
	}
	if exErr.Content != "I have a headache" {
		t.Errorf("expected preserved content for retry, got %q", exErr.Content)
	}

	after := o.Messages()
	if len(after) != len(before) {
		t.Fatalf("rollback not exact: %d messages before, %d after", len(before), len(after))
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Errorf("message %d changed across rollback", i)
		}
	}
	if o.Session() != sessionBefore {
		t.Error("session must be untouched by a failed exchange")
	}
	if o.InFlight() {
		t.Error("exchange slot must be released after rollback")
	}
}

func TestSendMessageValidation(t *testing.T) {
	f := &fakeAPI{}
	o := startedOrchestrator(f)

	if _, err := o.SendMessage(context.Background(), "   "); !errors.Is(err, models.ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if f.exchangeCall != 0 {
		t.Error("validation failure must not issue a request")
	}
	if len(o.Messages()) != 1 { // welcome only
		t.Error("validation failure must not mutate the transcript")
	}
}

func TestInFlightGuardBlocksConcurrentSend(t *testing.T) {
	o := startedOrchestrator(&fakeAPI{})

	if _, err := o.BeginExchange("first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := o.BeginExchange("second"); !errors.Is(err, models.ErrExchangeInFlight) {
		t.Errorf("expected ErrExchangeInFlight, got %v", err)
	}
}

func TestEmergencyBranch(t *testing.T) {
	emergency := exchangeReply("EMERGENCY ALERT", models.StageEmergencyAlert)
	emergency.EmergencyAlert = true
	emergency.Session.EmergencyDetected = true
	f := &fakeAPI{exchanges: []*models.ExchangeResponse{emergency}}
	o := startedOrchestrator(f)

	result, err := o.SendMessage(context.Background(), "severe chest pain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phase != PhaseEmergency || !result.Emergency {
		t.Fatalf("expected emergency branch, got phase=%s emergency=%v", result.Phase, result.Emergency)
	}
	if o.Phase() != PhaseEmergency || !o.EmergencySeen() {
		t.Error("orchestrator must record the emergency branch")
	}

	// The triggering assistant message remains appended.
	msgs := o.Messages()
	if msgs[len(msgs)-1].Content != "EMERGENCY ALERT" {
		t.Error("assistant message from the emergency exchange must stay in the transcript")
	}

	// No further exchanges are dispatched by the main flow.
	if _, err := o.SendMessage(context.Background(), "hello?"); !errors.Is(err, ErrConversationClosed) {
		t.Errorf("expected ErrConversationClosed after emergency, got %v", err)
	}
	if f.exchangeCall != 1 {
		t.Errorf("expected exactly 1 exchange dispatched, got %d", f.exchangeCall)
	}
}

func TestHealthGuideBranchDeliversSamePayload(t *testing.T) {
	guide := &models.HealthGuide{ID: "g-1", SessionID: "sess-1", SymptomSummary: "fever and cough"}
	resp := exchangeReply("here is your guide", models.StageFeedback)
	resp.HealthGuide = guide
	o := startedOrchestrator(&fakeAPI{exchanges: []*models.ExchangeResponse{resp}})

	result, err := o.SendMessage(context.Background(), "thank you")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phase != PhaseHealthGuide {
		t.Fatalf("expected health_guide phase, got %s", result.Phase)
	}
	if result.Guide != guide || o.Guide() != guide {
		t.Error("delivered guide must be reference-identical to the received payload")
	}
}

func TestEmergencyWinsOverHealthGuide(t *testing.T) {
	resp := exchangeReply("alert", models.StageEmergencyAlert)
	resp.EmergencyAlert = true
	resp.HealthGuide = &models.HealthGuide{ID: "g-1"}
	o := startedOrchestrator(&fakeAPI{exchanges: []*models.ExchangeResponse{resp}})

	result, err := o.SendMessage(context.Background(), "crushing pain in my chest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Phase != PhaseEmergency {
		t.Errorf("emergency must take precedence, got phase %s", result.Phase)
	}
	if o.Phase() != PhaseEmergency {
		t.Errorf("orchestrator phase must be emergency, got %s", o.Phase())
	}
}

func TestDismissEmergencyKeepsBranchState(t *testing.T) {
	resp := exchangeReply("alert", models.StageEmergencyAlert)
	resp.EmergencyAlert = true
	o := startedOrchestrator(&fakeAPI{exchanges: []*models.ExchangeResponse{resp}})

	if _, err := o.SendMessage(context.Background(), "can't breathe"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o.DismissEmergency()
	if !o.EmergencyDismissed() {
		t.Error("dismissal must be recorded")
	}
	if o.Phase() != PhaseEmergency || !o.EmergencySeen() {
		t.Error("dismissal must not forget the emergency branch")
	}
}
