// Package report renders consultation health reports as PDF files.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arogya-health/arogya/internal/models"
	"github.com/arogya-health/arogya/internal/util"
	"github.com/signintech/gopdf"
)

// DefaultReportsDir is where rendered reports land when no directory is
// configured.
const DefaultReportsDir = "reports"

// defaultMaxAge is how long reports are kept before cleanup removes them.
const defaultMaxAge = 7 * 24 * time.Hour

// fontPaths lists common DejaVuSans locations. DejaVu covers the Devanagari
// range needed for Hindi content.
var fontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Opts holds configuration options for the report service.
type Opts struct {
	ReportsDir string
}

// Option configures service construction.
type Option func(*Opts)

// WithReportsDir sets the output directory for rendered PDFs.
func WithReportsDir(dir string) Option {
	return func(o *Opts) { o.ReportsDir = dir }
}

// Service renders and manages PDF health reports.
type Service struct {
	reportsDir string
}

// NewService creates a report service, creating the output directory when
// missing.
func NewService(opts ...Option) (*Service, error) {
	cfg := Opts{ReportsDir: DefaultReportsDir}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := os.MkdirAll(cfg.ReportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &Service{reportsDir: cfg.ReportsDir}, nil
}

// GenerateHealthReport renders the health guide (and optionally the
// transcript) to a PDF file and returns its filename.
func (s *Service) GenerateHealthReport(session *models.Session, guide *models.HealthGuide, messages []models.Message, includeHistory bool) (string, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := loadFont(&pdf); err != nil {
		return "", err
	}

	if err := s.writeHeader(&pdf, session); err != nil {
		return "", err
	}
	if err := s.writeGuide(&pdf, guide); err != nil {
		return "", err
	}
	if len(guide.TraditionalRemedies) > 0 {
		if err := s.writeRemedies(&pdf, guide); err != nil {
			return "", err
		}
	}
	if includeHistory && len(messages) > 0 {
		if err := s.writeHistory(&pdf, messages); err != nil {
			return "", err
		}
	}
	if err := s.writeDisclaimer(&pdf); err != nil {
		return "", err
	}

	// Timestamp plus a short random suffix so same-second regenerations never
	// overwrite each other.
	filename := fmt.Sprintf("dr_arogya_health_report_%s_%s_%s.pdf",
		session.ID, time.Now().Format("20060102_150405"), util.GenerateRandomHex(6))
	path := filepath.Join(s.reportsDir, filename)
	if err := pdf.WritePdf(path); err != nil {
		return "", fmt.Errorf("failed to write PDF: %w", err)
	}
	slog.Info("Service.GenerateHealthReport rendered report", "session_id", session.ID, "filename", filename)
	return filename, nil
}

// ReportPath returns the full path of a rendered report. The filename is
// reduced to its base so request paths cannot escape the reports directory.
func (s *Service) ReportPath(filename string) string {
	return filepath.Join(s.reportsDir, filepath.Base(filename))
}

// CleanupOldReports removes PDFs older than a week.
func (s *Service) CleanupOldReports() {
	cutoff := time.Now().Add(-defaultMaxAge)
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		slog.Warn("Service.CleanupOldReports failed to read reports directory", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.reportsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("Service.CleanupOldReports failed to remove report", "error", err, "path", path)
			continue
		}
		slog.Debug("Service.CleanupOldReports removed old report", "path", path)
	}
}

func loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("failed to load DejaVuSans font, install ttf-dejavu: %w", lastErr)
}

func (s *Service) writeHeader(pdf *gopdf.GoPdf, session *models.Session) error {
	if err := pdf.SetFont("DejaVu", "", 18); err != nil {
		return err
	}
	pdf.Cell(nil, "Dr. Arogya - Health Consultation Report")
	pdf.Br(28)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return err
	}
	language := string(session.Language)
	if language == "" {
		language = string(models.LanguageEnglish)
	}
	details := []string{
		fmt.Sprintf("Session ID: %s", session.ID),
		fmt.Sprintf("Generated On: %s", time.Now().Format("January 2, 2006 at 3:04 PM")),
		fmt.Sprintf("Language: %s", strings.Title(language)),
		fmt.Sprintf("Consultation Stage: %s", strings.Title(strings.ReplaceAll(string(session.CurrentStage), "_", " "))),
	}
	for _, line := range details {
		pdf.Cell(nil, line)
		pdf.Br(13)
	}
	pdf.Br(10)
	return nil
}

func (s *Service) writeGuide(pdf *gopdf.GoPdf, guide *models.HealthGuide) error {
	sections := []struct {
		title string
		items []string
	}{
		{"Understanding Your Symptoms", []string{guide.SymptomSummary}},
		{"Potential Areas for Your Doctor to Explore", guide.PossibleConditions},
		{"Over-the-Counter Care Suggestions", guide.OTCRecommendations},
		{"Important Warning Signs", guide.WarningSigns},
		{"Nutritional Recommendations", guide.DietaryAdvice},
		{"Lifestyle Modifications", guide.LifestyleTips},
		{"When to Seek Medical Care", guide.WhenToSeeDoctor},
	}
	for _, section := range sections {
		if err := s.writeSection(pdf, section.title, section.items); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) writeSection(pdf *gopdf.GoPdf, title string, items []string) error {
	if err := pdf.SetFont("DejaVu", "", 13); err != nil {
		return err
	}
	pdf.Cell(nil, title)
	pdf.Br(16)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return err
	}
	for _, item := range items {
		if item == "" {
			continue
		}
		lines, _ := pdf.SplitText("- "+item, 480)
		for _, l := range lines {
			pdf.Cell(nil, l)
			pdf.Br(12)
		}
	}
	pdf.Br(8)
	return nil
}

func (s *Service) writeRemedies(pdf *gopdf.GoPdf, guide *models.HealthGuide) error {
	if err := pdf.SetFont("DejaVu", "", 13); err != nil {
		return err
	}
	pdf.Cell(nil, "Traditional Grandmother's Remedies")
	pdf.Br(16)

	if err := pdf.SetFont("DejaVu", "", 10); err != nil {
		return err
	}
	pdf.Cell(nil, "These remedies should complement, not replace, medical treatment.")
	pdf.Br(14)

	for _, remedy := range guide.TraditionalRemedies {
		lines := []string{
			remedy.Name,
			"Ingredients: " + strings.Join(remedy.Ingredients, ", "),
			"Preparation: " + remedy.Preparation,
			"Usage: " + remedy.Usage,
			"Benefits: " + remedy.Benefits,
		}
		for _, line := range lines {
			wrapped, _ := pdf.SplitText(line, 480)
			for _, l := range wrapped {
				pdf.Cell(nil, l)
				pdf.Br(12)
			}
		}
		pdf.Br(6)
	}
	pdf.Br(8)
	return nil
}

func (s *Service) writeHistory(pdf *gopdf.GoPdf, messages []models.Message) error {
	pdf.AddPage()
	if err := pdf.SetFont("DejaVu", "", 13); err != nil {
		return err
	}
	pdf.Cell(nil, "Conversation Summary")
	pdf.Br(16)

	if err := pdf.SetFont("DejaVu", "", 8); err != nil {
		return err
	}
	for _, m := range messages {
		speaker := "Dr. Arogya"
		if m.Sender == models.SenderUser {
			speaker = "You"
		}
		content := m.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		line := fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04"), speaker, content)
		wrapped, _ := pdf.SplitText(line, 480)
		for _, l := range wrapped {
			pdf.Cell(nil, l)
			pdf.Br(10)
		}
		pdf.Br(4)
	}
	return nil
}

func (s *Service) writeDisclaimer(pdf *gopdf.GoPdf) error {
	pdf.Br(12)
	if err := pdf.SetFont("DejaVu", "", 8); err != nil {
		return err
	}
	disclaimer := "IMPORTANT MEDICAL DISCLAIMER: This report is generated by Dr. Arogya, an AI health assistant, " +
		"and is intended for informational purposes only. It does not constitute medical advice, diagnosis, or " +
		"treatment. Always consult with qualified healthcare professionals for medical concerns. In case of " +
		"medical emergencies, contact your local emergency services immediately."
	lines, _ := pdf.SplitText(disclaimer, 480)
	for _, l := range lines {
		pdf.Cell(nil, l)
		pdf.Br(10)
	}
	return nil
}
