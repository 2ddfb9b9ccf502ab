// Package client provides the HTTP client for the Arogya consultation API.
//
// Every operation targets the /api base path and decodes the standard
// success envelope, except SendMessage and GenerateReport whose endpoints
// return bare composite bodies. All failures — transport errors, non-2xx
// statuses and success=false envelopes — are surfaced uniformly as
// recoverable errors wrapping models.ErrNonSuccessStatus where applicable.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/arogya-health/arogya/internal/models"
)

// DefaultBaseURL is used when no base URL option is provided.
const DefaultBaseURL = "http://localhost:8799"

// Opts holds configuration for the API client.
type Opts struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Option configures the API client.
type Option func(*Opts)

// WithBaseURL sets the server base URL (scheme://host[:port], no /api suffix).
func WithBaseURL(u string) Option {
	return func(o *Opts) { o.BaseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets a custom http.Client, e.g. one with a transport-level
// timeout policy.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = hc }
}

// Client talks to an Arogya consultation server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an API client.
func New(opts ...Option) *Client {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 90 * time.Second}
	}
	slog.Debug("client.New: created API client", "base_url", cfg.BaseURL)
	return &Client{baseURL: cfg.BaseURL, http: cfg.HTTPClient}
}

// BaseURL returns the configured server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListLanguages fetches the selectable language reference data.
func (c *Client) ListLanguages(ctx context.Context) ([]models.Language, error) {
	var langs []models.Language
	if err := c.getEnvelope(ctx, "/api/languages", &langs); err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	return langs, nil
}

// CreateSession creates a new consultation session.
func (c *Client) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	var session models.Session
	if err := c.postEnvelope(ctx, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	slog.Debug("Client.CreateSession: session created", "session_id", session.ID)
	return &session, nil
}

// bindLanguageData is the payload shape of the bind-language success envelope.
type bindLanguageData struct {
	Message models.Message `json:"message"`
}

// BindLanguage binds a language to an existing session and returns the
// localized welcome message the server emits.
func (c *Client) BindLanguage(ctx context.Context, sessionID string, code models.LanguageCode) (*models.Message, error) {
	sel := models.LanguageSelection{SessionID: sessionID, SelectedLanguage: code}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	var data bindLanguageData
	path := fmt.Sprintf("/api/sessions/%s/language", sessionID)
	if err := c.postEnvelope(ctx, path, sel, &data); err != nil {
		return nil, fmt.Errorf("bind language: %w", err)
	}
	return &data.Message, nil
}

// GetSession fetches the authoritative session snapshot.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	path := fmt.Sprintf("/api/sessions/%s", sessionID)
	if err := c.getEnvelope(ctx, path, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// GetMessages fetches the ordered message history for a session.
func (c *Client) GetMessages(ctx context.Context, sessionID string) ([]models.Message, error) {
	var msgs []models.Message
	path := fmt.Sprintf("/api/sessions/%s/messages", sessionID)
	if err := c.getEnvelope(ctx, path, &msgs); err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	return msgs, nil
}

// SendMessage performs one conversation exchange. The response is the bare
// composite envelope: assistant reply, session snapshot and optional branch
// signals.
func (c *Client) SendMessage(ctx context.Context, sessionID string, req models.CreateMessageRequest) (*models.ExchangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/api/sessions/%s/messages", sessionID)
	body, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	var exchange models.ExchangeResponse
	if err := json.Unmarshal(body, &exchange); err != nil {
		return nil, fmt.Errorf("send message: decode response: %w", err)
	}
	slog.Debug("Client.SendMessage: exchange completed",
		"session_id", sessionID,
		"stage", exchange.Session.CurrentStage,
		"emergency", exchange.EmergencyAlert,
		"has_guide", exchange.HealthGuide != nil)
	return &exchange, nil
}

// GetHealthGuide fetches the stored health guide for a session.
func (c *Client) GetHealthGuide(ctx context.Context, sessionID string) (*models.HealthGuide, error) {
	var guide models.HealthGuide
	path := fmt.Sprintf("/api/sessions/%s/health-guide", sessionID)
	if err := c.getEnvelope(ctx, path, &guide); err != nil {
		return nil, fmt.Errorf("get health guide: %w", err)
	}
	return &guide, nil
}

// GenerateReport asks the server to render the PDF health report and returns
// the download location.
func (c *Client) GenerateReport(ctx context.Context, sessionID string, includeHistory bool) (*models.PDFReportResponse, error) {
	req := models.PDFReportRequest{SessionID: sessionID, IncludeChatHistory: includeHistory}
	path := fmt.Sprintf("/api/sessions/%s/generate-pdf", sessionID)
	body, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	var report models.PDFReportResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("generate report: decode response: %w", err)
	}
	return &report, nil
}

// SubmitFeedback submits a one-shot feedback rating for a session.
func (c *Client) SubmitFeedback(ctx context.Context, sessionID string, req models.CreateFeedbackRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/sessions/%s/feedback", sessionID)
	if err := c.postEnvelope(ctx, path, req, nil); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}
	return nil
}

// getEnvelope performs a GET and decodes the standard envelope payload into v.
func (c *Client) getEnvelope(ctx context.Context, path string, v interface{}) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(body, v)
}

// postEnvelope performs a POST and decodes the standard envelope payload into
// v. v may be nil when only the ack matters.
func (c *Client) postEnvelope(ctx context.Context, path string, payload, v interface{}) error {
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	return decodeEnvelope(body, v)
}

// do executes a request and returns the raw response body. Any non-2xx
// status is reported as a non-success error; the body is still read so the
// server's message can be attached.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("Client.do: transport failure", "method", method, "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("Client.do: non-success status", "method", method, "path", path, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d: %s", models.ErrNonSuccessStatus, resp.StatusCode, serverMessage(body))
	}
	return body, nil
}

// decodeEnvelope unwraps the standard envelope and decodes its payload.
func decodeEnvelope(body []byte, v interface{}) error {
	var env models.APIResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("%w: %s", models.ErrNonSuccessStatus, env.Message)
	}
	if v == nil {
		return nil
	}
	return env.DecodeData(v)
}

// serverMessage extracts a human-readable message from an error body, falling
// back to a trimmed raw body.
func serverMessage(body []byte) string {
	var env models.APIResponse
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
