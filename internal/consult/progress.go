package consult

import "github.com/arogya-health/arogya/internal/models"

// Progress is a pure projection of a session's stage for UI feedback. It
// never reaches 100: full completion is implied only by the orchestrator
// entering a terminal phase.
type Progress struct {
	Percent int
	Status  string
}

// defaultPercent is projected before a session exists and for any stage
// without an explicit mapping.
const defaultPercent = 25

var stagePercent = map[models.Stage]int{
	models.StageGreeting:              25,
	models.StageSymptomInquiry:        50,
	models.StageDetailedAnalysis:      75,
	models.StageHealthGuideGeneration: 90,
}

var stageStatus = map[models.Stage]string{
	models.StageGreeting:              "Getting to know you",
	models.StageSymptomInquiry:        "Understanding your symptoms",
	models.StageDetailedAnalysis:      "Analyzing your condition",
	models.StageHealthGuideGeneration: "Preparing your health guide",
	models.StageFeedback:              "Ready for feedback",
}

// Project maps a session's stage to a completion percentage and status text.
// It is total and deterministic: a nil session projects the starting state
// and unrecognized stages fall back to the in-consultation default.
func Project(session *models.Session) Progress {
	if session == nil {
		return Progress{Percent: defaultPercent, Status: "Starting consultation..."}
	}
	p := Progress{Percent: defaultPercent, Status: "In consultation"}
	if pct, ok := stagePercent[session.CurrentStage]; ok {
		p.Percent = pct
	}
	if text, ok := stageStatus[session.CurrentStage]; ok {
		p.Status = text
	}
	return p
}
