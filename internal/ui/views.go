package ui

import (
	"fmt"
	"strings"

	"github.com/arogya-health/arogya/internal/models"
)

func (m Model) View() string {
	if m.emergencyOverlayActive() {
		return m.viewEmergency()
	}
	switch m.screen {
	case screenLanguage:
		return m.viewLanguage()
	case screenChat:
		return m.viewChat()
	case screenGuide:
		return m.viewGuide()
	case screenFeedback:
		return m.viewFeedback()
	}
	return ""
}

func (m Model) viewLanguage() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Dr. Arogya - Your AI Health Companion"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Namaste! Please choose your preferred language."))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spin.View() + " Loading languages...\n")
	} else if len(m.languages) == 0 {
		b.WriteString(m.styles.Error.Render("Could not reach the consultation server."))
		b.WriteString("\n" + m.styles.Help.Render("r: retry • q: quit") + "\n")
	} else {
		for i, lang := range m.languages {
			line := fmt.Sprintf("%s (%s)", lang.Name, lang.NativeName)
			if i == m.cursor {
				b.WriteString(m.styles.Selected.Render("→ " + line))
			} else {
				b.WriteString(m.styles.Unselect.Render("  " + line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n" + m.styles.Help.Render("↑/↓: select • enter: start consultation • q: quit") + "\n")
	}
	if m.errText != "" {
		b.WriteString("\n" + m.styles.Error.Render(m.errText) + "\n")
	}
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Dr. Arogya"))

	prog := m.orch.Progress()
	b.WriteString("  " + m.styles.Subtitle.Render(prog.Status))
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(float64(prog.Percent) / 100.0))
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.emergencyBannerActive() {
		b.WriteString(m.styles.Error.Render("Emergency detected - this consultation is closed. Please seek medical help."))
		b.WriteString("\n")
	} else if m.loading {
		b.WriteString(m.spin.View() + " Dr. Arogya is thinking...\n")
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString(m.styles.Error.Render(m.errText) + "\n")
	}
	b.WriteString(m.styles.Help.Render("enter: send • esc: quit"))
	return b.String()
}

func (m Model) viewEmergency() string {
	alert := m.styles.Emergency.Render(
		"EMERGENCY DETECTED\n\n" +
			"Based on what you've described, please seek medical help immediately:\n\n" +
			"  1. Contact emergency services or go to the hospital NOW\n" +
			"  2. Call a family member or friend\n" +
			"  3. Do not wait for this consultation to continue\n")
	return alert + "\n\n" + m.styles.Help.Render("press any key to acknowledge")
}

func (m Model) viewGuide() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Your Health Guide"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spin.View() + " Working...\n")
	}
	if m.status != "" {
		b.WriteString(m.styles.Status.Render(m.status) + "\n")
	}
	if m.errText != "" {
		b.WriteString(m.styles.Error.Render(m.errText) + "\n")
	}
	b.WriteString(m.styles.Help.Render("p: download PDF report • f: leave feedback • q: quit"))
	return b.String()
}

func (m Model) viewFeedback() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("How was your consultation?"))
	b.WriteString("\n\n")

	if m.feedbackSent {
		b.WriteString(m.styles.Status.Render("Thank you for your feedback!"))
		b.WriteString("\n\n" + m.styles.Help.Render("press enter to exit"))
		return b.String()
	}

	stars := strings.Repeat("★", m.rating) + strings.Repeat("☆", 5-m.rating)
	b.WriteString("Rating: " + m.styles.Selected.Render(stars))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.loading {
		b.WriteString(m.spin.View() + " Submitting...\n")
	}
	if m.errText != "" {
		b.WriteString(m.styles.Error.Render(m.errText) + "\n")
	}
	b.WriteString(m.styles.Help.Render("1-5: rate • enter: submit • esc: back to guide"))
	return b.String()
}

// emergencyBannerActive reports whether the dismissed-emergency banner shows
// in the chat view.
func (m Model) emergencyBannerActive() bool {
	return m.orch.EmergencySeen() && m.orch.EmergencyDismissed()
}

// refreshViewport re-renders the transcript into the chat viewport.
func (m *Model) refreshViewport() {
	if m.screen == screenGuide {
		return
	}
	var b strings.Builder
	for _, msg := range m.orch.Messages() {
		if msg.Sender == models.SenderUser {
			b.WriteString(m.styles.UserMsg.Render("You: ") + msg.Content)
		} else {
			b.WriteString(m.styles.DoctorMsg.Render("Dr. Arogya: ") + msg.Content)
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// setGuideViewport renders the health guide into the viewport.
func (m *Model) setGuideViewport() {
	guide := m.orch.Guide()
	if guide == nil {
		return
	}
	var b strings.Builder
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(m.styles.Selected.Render(title) + "\n")
		for _, item := range items {
			b.WriteString("  • " + item + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(guide.SymptomSummary + "\n\n")
	section("Potential areas for your doctor to explore", guide.PossibleConditions)
	section("Over-the-counter care", guide.OTCRecommendations)
	section("Warning signs", guide.WarningSigns)
	section("Dietary advice", guide.DietaryAdvice)
	section("Lifestyle tips", guide.LifestyleTips)
	section("When to see a doctor", guide.WhenToSeeDoctor)

	if len(guide.TraditionalRemedies) > 0 {
		b.WriteString(m.styles.Selected.Render("Dadi Maa ke Nuskhe (traditional remedies)") + "\n")
		for _, r := range guide.TraditionalRemedies {
			b.WriteString("  • " + r.Name + "\n")
			b.WriteString("      Ingredients: " + strings.Join(r.Ingredients, ", ") + "\n")
			b.WriteString("      " + r.Preparation + " " + r.Usage + "\n")
		}
		b.WriteString("\n")
	}
	if m.reportURL != "" {
		b.WriteString(m.styles.Status.Render("PDF report: "+m.reportURL) + "\n")
	}
	m.viewport.SetContent(m.styles.Guide.Render(b.String()))
	m.viewport.GotoTop()
}
