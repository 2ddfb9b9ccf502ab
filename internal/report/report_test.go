package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arogya-health/arogya/internal/models"
)

func fontAvailable() bool {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

func TestGenerateHealthReport(t *testing.T) {
	if !fontAvailable() {
		t.Skip("DejaVuSans font not installed")
	}
	svc, err := NewService(WithReportsDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	now := time.Now().UTC()
	session := &models.Session{ID: "sess-1", Language: models.LanguageEnglish, CurrentStage: models.StageFeedback}
	guide := &models.HealthGuide{
		SessionID:          "sess-1",
		SymptomSummary:     "Reported symptoms: cough, fatigue",
		PossibleConditions: []string{"Please consult a healthcare professional"},
		OTCRecommendations: []string{"Rest well", "Stay hydrated"},
		WarningSigns:       []string{"Severe or worsening symptoms"},
		DietaryAdvice:      []string{"Eat nutritious meals"},
		LifestyleTips:      []string{"Get adequate sleep"},
		WhenToSeeDoctor:    []string{"If symptoms persist"},
		TraditionalRemedies: []models.TraditionalRemedy{
			{Name: "Haldi Doodh", Ingredients: []string{"milk", "turmeric"}, Preparation: "Mix", Usage: "Bedtime", Benefits: "Soothing"},
		},
	}
	messages := []models.Message{
		{Sender: models.SenderUser, Content: "I have a cough", Timestamp: now},
		{Sender: models.SenderAssistant, Content: "How long has it been going on?", Timestamp: now.Add(time.Second)},
	}

	filename, err := svc.GenerateHealthReport(session, guide, messages, true)
	if err != nil {
		t.Fatalf("GenerateHealthReport: %v", err)
	}
	if !strings.HasPrefix(filename, "dr_arogya_health_report_sess-1_") || !strings.HasSuffix(filename, ".pdf") {
		t.Errorf("unexpected filename %q", filename)
	}
	info, err := os.Stat(svc.ReportPath(filename))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("report file is empty")
	}
}

func TestReportPathStripsDirectories(t *testing.T) {
	svc, err := NewService(WithReportsDir(t.TempDir()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	got := svc.ReportPath("../../etc/passwd")
	if filepath.Base(got) != "passwd" || strings.Contains(got, "..") {
		t.Errorf("path traversal not neutralized: %q", got)
	}
}

func TestCleanupOldReports(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewService(WithReportsDir(dir))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	old := filepath.Join(dir, "old.pdf")
	fresh := filepath.Join(dir, "fresh.pdf")
	for _, p := range []string{old, fresh} {
		if err := os.WriteFile(p, []byte("%PDF"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	stale := time.Now().Add(-8 * 24 * time.Hour)
	if err := os.Chtimes(old, stale, stale); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	svc.CleanupOldReports()

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("stale report should have been removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh report should survive cleanup")
	}
}
