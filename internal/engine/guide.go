package engine

import (
	"strings"
	"time"

	"github.com/arogya-health/arogya/internal/models"
	"github.com/google/uuid"
)

// ExtractSymptoms pulls recognized symptom keywords from user messages,
// deduplicated in order of first appearance.
func ExtractSymptoms(messages []models.Message) []string {
	var symptoms []string
	seen := make(map[string]bool)
	for _, m := range messages {
		if m.Sender != models.SenderUser {
			continue
		}
		lower := strings.ToLower(m.Content)
		for _, kw := range symptomKeywords {
			if strings.Contains(lower, kw) && !seen[kw] {
				seen[kw] = true
				symptoms = append(symptoms, kw)
			}
		}
	}
	return symptoms
}

// buildHealthGuide assembles the structured guide from the transcript. The
// content is conservative on purpose: it points the user to a doctor rather
// than attempting a diagnosis.
func (e *Engine) buildHealthGuide(session *models.Session, messages []models.Message) models.HealthGuide {
	symptoms := ExtractSymptoms(messages)
	session.Symptoms = symptoms

	summary := "Thank you for sharing your health concerns."
	if len(symptoms) > 0 {
		summary = "Reported symptoms: " + strings.Join(symptoms, ", ")
	}

	lang := session.Language
	if lang == "" {
		lang = models.LanguageEnglish
	}

	guide := models.HealthGuide{
		ID:                 uuid.NewString(),
		SessionID:          session.ID,
		Language:           lang,
		SymptomSummary:     summary,
		PossibleConditions: []string{"Please consult a healthcare professional for proper evaluation"},
		OTCRecommendations: []string{"Rest well", "Stay hydrated", "Monitor symptoms"},
		WarningSigns:       []string{"Severe or worsening symptoms", "Persistent discomfort"},
		DietaryAdvice:      []string{"Eat nutritious meals", "Avoid processed foods", "Include fruits and vegetables"},
		LifestyleTips:      []string{"Get adequate sleep", "Exercise regularly", "Manage stress"},
		WhenToSeeDoctor:    []string{"For proper diagnosis", "If symptoms persist or worsen"},
		SeverityLevel:      models.SeverityLow,
		CreatedAt:          time.Now().UTC(),
	}

	for _, symptom := range symptoms {
		guide.TraditionalRemedies = append(guide.TraditionalRemedies, traditionalRemedies[symptom]...)
	}
	if len(guide.TraditionalRemedies) == 0 {
		guide.TraditionalRemedies = []models.TraditionalRemedy{wellnessRemedy(lang)}
	}
	return guide
}
