// Package engine implements the Dr. Arogya consultation logic for the dev
// server: staged conversation progression, emergency keyword screening,
// health guide assembly and feedback capture.
//
// Replies come from a pluggable Responder (an LLM-backed one in production
// runs); when none is configured, or when the responder fails, the engine
// falls back to scripted stage prompts so a consultation can always complete.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arogya-health/arogya/internal/models"
	"github.com/arogya-health/arogya/internal/store"
	"github.com/google/uuid"
)

// detailedResponseWords is the word-count threshold above which a symptom
// inquiry answer is considered detailed enough to advance the stage.
const detailedResponseWords = 10

// guideMessageThreshold is the transcript length after which a detailed
// analysis conversation moves on to health guide generation.
const guideMessageThreshold = 8

// Responder produces an assistant reply for a non-emergency user message.
type Responder interface {
	Reply(ctx context.Context, session *models.Session, userMessage string) (string, error)
}

// Opts holds configuration options for the engine.
type Opts struct {
	Store     store.Store
	Responder Responder
}

// Option configures engine construction.
type Option func(*Opts)

// WithStore sets the persistence backend. Required.
func WithStore(s store.Store) Option {
	return func(o *Opts) { o.Store = s }
}

// WithResponder sets the reply generator. Optional; without it the engine
// serves scripted stage prompts.
func WithResponder(r Responder) Option {
	return func(o *Opts) { o.Responder = r }
}

// Engine drives consultations against a store.
type Engine struct {
	store     store.Store
	responder Responder
}

// New creates a consultation engine.
func New(opts ...Option) (*Engine, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("engine requires a store")
	}
	return &Engine{store: cfg.Store, responder: cfg.Responder}, nil
}

// Languages returns the supported language catalogue.
func Languages() []models.Language {
	out := make([]models.Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// IsSupportedLanguage reports whether the code is in the catalogue.
func IsSupportedLanguage(code models.LanguageCode) bool {
	for _, l := range supportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// DetectEmergency reports whether the message contains a red-flag phrase for
// the given language. English keywords are always screened so that emergency
// phrases typed in English are caught regardless of the bound language.
func DetectEmergency(content string, lang models.LanguageCode) bool {
	lower := strings.ToLower(content)
	for _, kw := range emergencyKeywords[models.LanguageEnglish] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if lang == models.LanguageEnglish {
		return false
	}
	for _, kw := range emergencyKeywords[lang] {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CreateSession creates a blank session in the language_selection stage.
func (e *Engine) CreateSession(req models.CreateSessionRequest) (*models.Session, error) {
	now := time.Now().UTC()
	session := models.Session{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Language:     req.Language,
		CurrentStage: models.StageLanguageSelection,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("Engine.CreateSession: %w", err)
	}
	slog.Debug("Engine.CreateSession created session", "session_id", session.ID)
	return &session, nil
}

// BindLanguage sets the consultation language, advances the session to the
// greeting stage and returns the stored welcome message.
func (e *Engine) BindLanguage(sessionID string, sel models.LanguageSelection) (*models.Message, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if !IsSupportedLanguage(sel.SelectedLanguage) {
		return nil, models.ErrUnknownLanguage
	}
	session, err := e.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	session.Language = sel.SelectedLanguage
	session.CurrentStage = models.StageGreeting
	session.UpdatedAt = time.Now().UTC()
	if err := e.store.SaveSession(*session); err != nil {
		return nil, fmt.Errorf("Engine.BindLanguage: %w", err)
	}

	welcome := models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    models.SenderAssistant,
		Content:   WelcomeMessage(sel.SelectedLanguage),
		Language:  sel.SelectedLanguage,
		Timestamp: time.Now().UTC(),
	}
	if err := e.store.AddMessage(welcome); err != nil {
		return nil, fmt.Errorf("Engine.BindLanguage: %w", err)
	}
	slog.Debug("Engine.BindLanguage bound language", "session_id", sessionID, "language", sel.SelectedLanguage)
	return &welcome, nil
}

// Exchange processes one user message: it stores the message, screens for
// emergencies, advances the stage, generates the assistant reply and, when
// the consultation completes, assembles the health guide. The returned
// response carries the updated session snapshot and at most one branch
// signal.
func (e *Engine) Exchange(ctx context.Context, sessionID string, req models.CreateMessageRequest) (*models.ExchangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	session, err := e.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}

	lang := session.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang == "" {
		lang = models.LanguageEnglish
	}

	now := time.Now().UTC()
	userMsg := models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    models.SenderUser,
		Content:   req.Content,
		Language:  lang,
		Timestamp: now,
	}
	if err := e.store.AddMessage(userMsg); err != nil {
		return nil, fmt.Errorf("Engine.Exchange: %w", err)
	}

	emergency := DetectEmergency(req.Content, lang)

	var replyText string
	if emergency {
		replyText = EmergencyResponse(lang)
		session.EmergencyDetected = true
		session.SeverityLevel = models.SeverityEmergency
		session.CurrentStage = models.StageEmergencyAlert
	} else {
		replyText = e.reply(ctx, session, req.Content)
		next, err := e.nextStage(session, req.Content)
		if err != nil {
			return nil, fmt.Errorf("Engine.Exchange: %w", err)
		}
		session.CurrentStage = next
	}
	session.UpdatedAt = time.Now().UTC()
	if err := e.store.SaveSession(*session); err != nil {
		return nil, fmt.Errorf("Engine.Exchange: %w", err)
	}

	reply := models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Sender:    models.SenderAssistant,
		Content:   replyText,
		Language:  session.Language,
		Timestamp: now.Add(time.Millisecond),
	}
	if err := e.store.AddMessage(reply); err != nil {
		return nil, fmt.Errorf("Engine.Exchange: %w", err)
	}

	var guide *models.HealthGuide
	if session.CurrentStage == models.StageHealthGuideGeneration {
		msgs, err := e.store.GetMessages(sessionID)
		if err != nil {
			return nil, fmt.Errorf("Engine.Exchange: %w", err)
		}
		g := e.buildHealthGuide(session, msgs)
		if err := e.store.SaveHealthGuide(g); err != nil {
			return nil, fmt.Errorf("Engine.Exchange: %w", err)
		}
		session.HealthGuideGenerated = true
		session.CurrentStage = models.StageFeedback
		session.UpdatedAt = time.Now().UTC()
		if err := e.store.SaveSession(*session); err != nil {
			return nil, fmt.Errorf("Engine.Exchange: %w", err)
		}
		guide = &g
		slog.Info("Engine.Exchange generated health guide", "session_id", sessionID)
	}

	return &models.ExchangeResponse{
		Message:        reply,
		Session:        *session,
		HealthGuide:    guide,
		EmergencyAlert: emergency,
	}, nil
}

// reply produces the assistant text for a non-emergency message, falling back
// to a scripted stage prompt when no responder is configured or it errors.
func (e *Engine) reply(ctx context.Context, session *models.Session, userMessage string) string {
	if e.responder != nil {
		text, err := e.responder.Reply(ctx, session, userMessage)
		if err == nil {
			return text
		}
		slog.Warn("Engine.reply responder failed, using scripted reply", "error", err, "session_id", session.ID)
	}
	return stagePrompt(session)
}

// stagePrompt returns the scripted assistant reply for the session's current
// stage.
func stagePrompt(session *models.Session) string {
	lang := session.Language
	switch session.CurrentStage {
	case models.StageLanguageSelection, models.StageGreeting:
		if lang == models.LanguageHindi {
			return "कृपया अपने लक्षणों के बारे में विस्तार से बताएं: वे कब शुरू हुए, कितने गंभीर हैं, और क्या कुछ उन्हें बढ़ाता या घटाता है?"
		}
		return "Thank you for sharing. Could you tell me more about your symptoms: when they started, how severe they feel, and whether anything makes them better or worse?"
	case models.StageSymptomInquiry:
		if lang == models.LanguageHindi {
			return "समझ गया। दर्द या तकलीफ ठीक कहाँ है, और कब से है? क्या यह लगातार है या आता-जाता है?"
		}
		return "I see. Where exactly is the discomfort, and how long has it been going on? Is it constant, or does it come and go?"
	case models.StageDetailedAnalysis:
		if lang == models.LanguageHindi {
			return "धन्यवाद, यह जानकारी उपयोगी है। क्या कोई और लक्षण है जो आपने देखा हो — बुखार, थकान, या नींद में बदलाव?"
		}
		return "Thank you, that is helpful. Is there anything else you have noticed, like fever, fatigue, or changes in sleep or appetite?"
	case models.StageHealthGuideGeneration, models.StageFeedback:
		if lang == models.LanguageHindi {
			return "मैंने आपके लिए एक स्वास्थ्य गाइड तैयार किया है। कृपया इसे देखें और डॉक्टर से मिलने की तैयारी करें।"
		}
		return "I have prepared a health guide based on our conversation. Please review it and use it to prepare for your doctor's visit."
	}
	return FallbackResponse(lang)
}

// nextStage applies the stage progression heuristics for a non-emergency
// user message.
func (e *Engine) nextStage(session *models.Session, userMessage string) (models.Stage, error) {
	switch session.CurrentStage {
	case models.StageGreeting:
		return models.StageSymptomInquiry, nil
	case models.StageSymptomInquiry:
		if len(strings.Fields(userMessage)) > detailedResponseWords {
			return models.StageDetailedAnalysis, nil
		}
		return models.StageSymptomInquiry, nil
	case models.StageDetailedAnalysis:
		count, err := e.store.CountMessages(session.ID)
		if err != nil {
			return "", err
		}
		if count > guideMessageThreshold {
			return models.StageHealthGuideGeneration, nil
		}
		return models.StageDetailedAnalysis, nil
	}
	return session.CurrentStage, nil
}

// SubmitFeedback validates and records a feedback submission.
func (e *Engine) SubmitFeedback(sessionID string, req models.CreateFeedbackRequest) (*models.Feedback, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fb := models.Feedback{
		ID:                     uuid.NewString(),
		SessionID:              sessionID,
		Rating:                 req.Rating,
		Comments:               req.Comments,
		HelpfulAspects:         req.HelpfulAspects,
		ImprovementSuggestions: req.ImprovementSuggestions,
		CreatedAt:              time.Now().UTC(),
	}
	if err := e.store.AddFeedback(fb); err != nil {
		return nil, fmt.Errorf("Engine.SubmitFeedback: %w", err)
	}
	slog.Info("Engine.SubmitFeedback recorded feedback", "session_id", sessionID, "rating", req.Rating)
	return &fb, nil
}
