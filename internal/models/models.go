// Package models defines the core data structures for Arogya.
//
// It includes the consultation session, message, language and health guide
// types shared between the client, the orchestrator and the dev server, plus
// the JSON envelope used by every API endpoint.
package models

import (
	"errors"
	"strings"
	"time"
)

// LanguageCode identifies one of the supported consultation languages.
type LanguageCode string

const (
	LanguageEnglish  LanguageCode = "english"
	LanguageHindi    LanguageCode = "hindi"
	LanguageKannada  LanguageCode = "kannada"
	LanguageMarathi  LanguageCode = "marathi"
	LanguageTelugu   LanguageCode = "telugu"
	LanguageTamil    LanguageCode = "tamil"
	LanguageBengali  LanguageCode = "bengali"
	LanguageGujarati LanguageCode = "gujarati"
)

// Language is immutable reference data describing a selectable language.
type Language struct {
	Code       LanguageCode `json:"code"`
	Name       string       `json:"name"`
	NativeName string       `json:"native_name"`
}

// Stage is the server-reported milestone of a consultation's progress.
type Stage string

const (
	StageLanguageSelection     Stage = "language_selection"
	StageGreeting              Stage = "greeting"
	StageSymptomInquiry        Stage = "symptom_inquiry"
	StageDetailedAnalysis      Stage = "detailed_analysis"
	StageHealthGuideGeneration Stage = "health_guide_generation"
	StageFeedback              Stage = "feedback"
	StageEmergencyAlert        Stage = "emergency_alert"
)

// stageOrder lists the normal progression. StageEmergencyAlert sits outside
// the order: it can be entered from any stage and supersedes progression.
var stageOrder = map[Stage]int{
	StageLanguageSelection:     0,
	StageGreeting:              1,
	StageSymptomInquiry:        2,
	StageDetailedAnalysis:      3,
	StageHealthGuideGeneration: 4,
	StageFeedback:              5,
}

// Ordinal returns the position of the stage in the normal progression, or -1
// for StageEmergencyAlert and unknown stages.
func (s Stage) Ordinal() int {
	if ord, ok := stageOrder[s]; ok {
		return ord
	}
	return -1
}

// IsValidStage reports whether the given stage is one the server may emit.
func IsValidStage(s Stage) bool {
	return s == StageEmergencyAlert || s.Ordinal() >= 0
}

// Severity classifies how serious the reported symptoms are.
type Severity string

const (
	SeverityLow       Severity = "low"
	SeverityMedium    Severity = "medium"
	SeverityHigh      Severity = "high"
	SeverityEmergency Severity = "emergency"
)

// Message sender values. The assistant identifies itself as "dr_arogya" on
// the wire.
const (
	SenderUser      = "user"
	SenderAssistant = "dr_arogya"
)

// Validation constants for input validation
const (
	// MaxMessageContentLength defines the maximum allowed length for a user message
	MaxMessageContentLength = 4096
	// MinFeedbackRating and MaxFeedbackRating bound the feedback rating scale
	MinFeedbackRating = 1
	MaxFeedbackRating = 5
)

// Error variables for better error handling and testability
var (
	ErrEmptyMessage      = errors.New("message content cannot be empty")
	ErrMessageTooLong    = errors.New("message content exceeds maximum length")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrMissingLanguage   = errors.New("language is required")
	ErrMissingSessionID  = errors.New("session id is required")
	ErrSessionNotFound   = errors.New("session not found")
	ErrGuideNotFound     = errors.New("health guide not found")
	ErrUnknownLanguage   = errors.New("unknown language code")
	ErrNonSuccessStatus  = errors.New("server returned a non-success response")
	ErrExchangeInFlight  = errors.New("an exchange is already in flight for this session")
	ErrSessionNotStarted = errors.New("consultation session has not been started")
)

// Message is a single conversation turn. The sequence is append-only except
// for the compensating removal of an optimistically inserted user message
// when its exchange fails.
type Message struct {
	ID        string       `json:"id"`
	SessionID string       `json:"session_id"`
	Sender    string       `json:"sender"`
	Content   string       `json:"content"`
	Language  LanguageCode `json:"language,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Session is the authoritative consultation record. The server owns stage
// progression; clients replace their copy wholesale with each returned
// snapshot and never merge field by field.
type Session struct {
	ID                   string       `json:"id"`
	UserID               string       `json:"user_id,omitempty"`
	Language             LanguageCode `json:"language,omitempty"`
	CurrentStage         Stage        `json:"current_stage"`
	Symptoms             []string     `json:"symptoms,omitempty"`
	SeverityLevel        Severity     `json:"severity_level,omitempty"`
	EmergencyDetected    bool         `json:"emergency_detected"`
	HealthGuideGenerated bool         `json:"health_guide_generated"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// TraditionalRemedy is a home remedy entry in a health guide.
type TraditionalRemedy struct {
	Name        string       `json:"name"`
	Ingredients []string     `json:"ingredients"`
	Preparation string       `json:"preparation"`
	Usage       string       `json:"usage"`
	Benefits    string       `json:"benefits"`
	Language    LanguageCode `json:"language"`
}

// HealthGuide is the structured result generated when a consultation reaches
// the health_guide_generation stage. Consumers treat it as an immutable value.
type HealthGuide struct {
	ID                  string              `json:"id"`
	SessionID           string              `json:"session_id"`
	Language            LanguageCode        `json:"language"`
	SymptomSummary      string              `json:"symptom_summary"`
	PossibleConditions  []string            `json:"possible_conditions"`
	OTCRecommendations  []string            `json:"otc_recommendations"`
	WarningSigns        []string            `json:"warning_signs"`
	TraditionalRemedies []TraditionalRemedy `json:"traditional_remedies"`
	DietaryAdvice       []string            `json:"dietary_advice"`
	LifestyleTips       []string            `json:"lifestyle_tips"`
	WhenToSeeDoctor     []string            `json:"when_to_see_doctor"`
	SeverityLevel       Severity            `json:"severity_level"`
	CreatedAt           time.Time           `json:"created_at"`
}

// Feedback is a one-shot post-consultation rating.
type Feedback struct {
	ID                     string    `json:"id"`
	SessionID              string    `json:"session_id"`
	Rating                 int       `json:"rating"`
	Comments               string    `json:"comments,omitempty"`
	HelpfulAspects         []string  `json:"helpful_aspects,omitempty"`
	ImprovementSuggestions string    `json:"improvement_suggestions,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}

// CreateSessionRequest is the body of POST /api/sessions.
type CreateSessionRequest struct {
	UserID   string       `json:"user_id,omitempty"`
	Language LanguageCode `json:"language,omitempty"`
}

// CreateMessageRequest is the body of POST /api/sessions/{id}/messages.
type CreateMessageRequest struct {
	Content  string       `json:"content"`
	Language LanguageCode `json:"language,omitempty"`
}

// Validate rejects empty or oversized message content before any network or
// engine work happens.
func (r *CreateMessageRequest) Validate() error {
	content := strings.TrimSpace(r.Content)
	if content == "" {
		return ErrEmptyMessage
	}
	if len(content) > MaxMessageContentLength {
		return ErrMessageTooLong
	}
	return nil
}

// LanguageSelection is the body of POST /api/sessions/{id}/language.
type LanguageSelection struct {
	SessionID        string       `json:"session_id"`
	SelectedLanguage LanguageCode `json:"selected_language"`
}

// Validate checks the binding request is complete.
func (l *LanguageSelection) Validate() error {
	if l.SessionID == "" {
		return ErrMissingSessionID
	}
	if l.SelectedLanguage == "" {
		return ErrMissingLanguage
	}
	return nil
}

// CreateFeedbackRequest is the body of POST /api/sessions/{id}/feedback.
type CreateFeedbackRequest struct {
	Rating                 int      `json:"rating"`
	Comments               string   `json:"comments,omitempty"`
	HelpfulAspects         []string `json:"helpful_aspects,omitempty"`
	ImprovementSuggestions string   `json:"improvement_suggestions,omitempty"`
}

// Validate enforces the 1..5 rating bound client-side so no request is issued
// for an invalid submission.
func (r *CreateFeedbackRequest) Validate() error {
	if r.Rating < MinFeedbackRating || r.Rating > MaxFeedbackRating {
		return ErrInvalidRating
	}
	return nil
}

// PDFReportRequest is the body of POST /api/sessions/{id}/generate-pdf.
type PDFReportRequest struct {
	SessionID          string `json:"session_id"`
	IncludeChatHistory bool   `json:"include_chat_history"`
}

// PDFReportResponse describes a rendered report ready for download.
type PDFReportResponse struct {
	PDFURL    string    `json:"pdf_url"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// ExchangeResponse is the composite envelope returned by the send-message
// endpoint: the assistant reply, the updated session snapshot and at most one
// branch signal. It intentionally has no success field; transport-level
// status is the failure signal.
type ExchangeResponse struct {
	Message        Message      `json:"message"`
	Session        Session      `json:"session"`
	HealthGuide    *HealthGuide `json:"health_guide,omitempty"`
	EmergencyAlert bool         `json:"emergency_alert"`
}
