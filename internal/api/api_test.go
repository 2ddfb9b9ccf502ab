package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arogya-health/arogya/internal/engine"
	"github.com/arogya-health/arogya/internal/models"
	"github.com/arogya-health/arogya/internal/report"
	"github.com/arogya-health/arogya/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st := store.NewInMemoryStore()
	eng, err := engine.New(engine.WithStore(st))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	reports, err := report.NewService(report.WithReportsDir(t.TempDir()))
	if err != nil {
		t.Fatalf("report.NewService: %v", err)
	}
	srv, err := NewServer(WithStore(st), WithEngine(eng), WithReports(reports))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response, out interface{}) models.APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var env models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if out != nil && env.Data != nil {
		if err := env.DecodeData(out); err != nil {
			t.Fatalf("decode envelope data: %v", err)
		}
	}
	return env
}

func createBoundSession(t *testing.T, ts *httptest.Server, lang models.LanguageCode) string {
	t.Helper()
	resp := postJSON(t, ts.URL+"/api/sessions", models.CreateSessionRequest{})
	var session models.Session
	env := decodeEnvelope(t, resp, &session)
	if !env.Success || session.ID == "" {
		t.Fatalf("session creation failed: %+v", env)
	}

	resp = postJSON(t, ts.URL+"/api/sessions/"+session.ID+"/language", models.LanguageSelection{
		SessionID:        session.ID,
		SelectedLanguage: lang,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("language bind returned %d", resp.StatusCode)
	}
	var data struct {
		Message *models.Message `json:"message"`
	}
	env = decodeEnvelope(t, resp, &data)
	if !env.Success || data.Message == nil || data.Message.Sender != models.SenderAssistant {
		t.Fatalf("language bind must return the welcome message: %+v", env)
	}
	return session.ID
}

func TestLanguagesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/languages")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var langs []models.Language
	env := decodeEnvelope(t, resp, &langs)
	if !env.Success || len(langs) != 8 {
		t.Fatalf("expected 8 languages, got %d (%+v)", len(langs), env)
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/sessions/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp, nil)
	if env.Success || env.Message != "Session not found" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestSendMessageReturnsBareExchangeBody(t *testing.T) {
	ts := newTestServer(t)
	sessionID := createBoundSession(t, ts, models.LanguageEnglish)

	resp := postJSON(t, ts.URL+"/api/sessions/"+sessionID+"/messages", models.CreateMessageRequest{Content: "I have a headache"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var exch models.ExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&exch); err != nil {
		t.Fatalf("decode exchange: %v", err)
	}
	if exch.Message.Sender != models.SenderAssistant {
		t.Errorf("expected assistant reply, got %+v", exch.Message)
	}
	if exch.Session.CurrentStage != models.StageSymptomInquiry {
		t.Errorf("expected symptom_inquiry, got %s", exch.Session.CurrentStage)
	}
	if exch.EmergencyAlert || exch.HealthGuide != nil {
		t.Error("no branch signal expected")
	}
}

func TestSendMessageEmergency(t *testing.T) {
	ts := newTestServer(t)
	sessionID := createBoundSession(t, ts, models.LanguageEnglish)

	resp := postJSON(t, ts.URL+"/api/sessions/"+sessionID+"/messages", models.CreateMessageRequest{Content: "severe bleeding from my arm"})
	defer resp.Body.Close()
	var exch models.ExchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&exch); err != nil {
		t.Fatalf("decode exchange: %v", err)
	}
	if !exch.EmergencyAlert || exch.Session.CurrentStage != models.StageEmergencyAlert {
		t.Fatalf("expected emergency branch, got %+v", exch.Session)
	}
}

func TestSendMessageValidation(t *testing.T) {
	ts := newTestServer(t)
	sessionID := createBoundSession(t, ts, models.LanguageEnglish)

	resp := postJSON(t, ts.URL+"/api/sessions/"+sessionID+"/messages", models.CreateMessageRequest{Content: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp, nil)
	if env.Success {
		t.Error("expected error envelope")
	}
}

func TestGetMessagesAfterBind(t *testing.T) {
	ts := newTestServer(t)
	sessionID := createBoundSession(t, ts, models.LanguageHindi)

	resp, err := http.Get(ts.URL + "/api/sessions/" + sessionID + "/messages")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	var msgs []models.Message
	env := decodeEnvelope(t, resp, &msgs)
	if !env.Success || len(msgs) != 1 {
		t.Fatalf("expected the stored welcome message, got %d messages", len(msgs))
	}
	if msgs[0].Language != models.LanguageHindi {
		t.Errorf("welcome message language = %s", msgs[0].Language)
	}
}

func TestHealthGuideNotFound(t *testing.T) {
	ts := newTestServer(t)
	sessionID := createBoundSession(t, ts, models.LanguageEnglish)

	resp, err := http.Get(ts.URL + "/api/sessions/" + sessionID + "/health-guide")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before guide generation, got %d", resp.StatusCode)
	}
	decodeEnvelope(t, resp, nil)
}

func TestFeedbackEndpoint(t *testing.T) {
	ts := newTestServer(t)
	sessionID := createBoundSession(t, ts, models.LanguageEnglish)

	resp := postJSON(t, ts.URL+"/api/sessions/"+sessionID+"/feedback", models.CreateFeedbackRequest{Rating: 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid rating must 400, got %d", resp.StatusCode)
	}
	decodeEnvelope(t, resp, nil)

	resp = postJSON(t, ts.URL+"/api/sessions/"+sessionID+"/feedback", models.CreateFeedbackRequest{Rating: 5, Comments: "very helpful"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var fb models.Feedback
	env := decodeEnvelope(t, resp, &fb)
	if !env.Success || fb.Rating != 5 {
		t.Errorf("unexpected feedback envelope: %+v", env)
	}
}

func TestDownloadMissingReport(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/reports/does_not_exist.pdf")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	decodeEnvelope(t, resp, nil)
}
