package ui

import (
	"fmt"
	"strings"

	"github.com/arogya-health/arogya/internal/consult"
	"github.com/arogya-health/arogya/internal/models"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// screen identifies which top-level view is active.
type screen int

const (
	screenLanguage screen = iota
	screenChat
	screenGuide
	screenFeedback
)

// Model is the bubbletea model for a consultation. It owns the orchestrator:
// all state transitions happen on the event loop, while commands only perform
// network I/O and report back as messages.
type Model struct {
	api      consult.API
	orch     *consult.Orchestrator
	boot     *consult.Bootstrapper
	reports  *consult.ReportTrigger
	feedback *consult.FeedbackCollector

	styles   Styles
	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	bar      progress.Model

	screen    screen
	languages []models.Language
	cursor    int

	loading   bool
	status    string
	errText   string
	reportURL string

	rating       int
	feedbackSent bool

	width  int
	height int
	ready  bool
}

// NewModel creates the consultation UI over the given API client.
func NewModel(api consult.API) Model {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Placeholder = "Describe your health concern... (Enter to send, Ctrl+C to quit)"
	ti.CharLimit = models.MaxMessageContentLength
	ti.Prompt = "│ "
	ti.Width = 80

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(80, 20)

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return Model{
		api:      api,
		orch:     consult.New(api),
		boot:     consult.NewBootstrapper(api),
		reports:  consult.NewReportTrigger(api),
		styles:   styles,
		input:    ti,
		viewport: vp,
		spin:     sp,
		bar:      bar,
		screen:   screenLanguage,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick, m.loadLanguagesCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.emergencyOverlayActive() {
			// Any key acknowledges the alert; the branch stays terminal.
			m.orch.DismissEmergency()
			return m, nil
		}
		switch m.screen {
		case screenLanguage:
			return m.updateLanguageKeys(msg)
		case screenChat:
			if model, cmd, handled := m.updateChatKeys(msg); handled {
				return model, cmd
			}
		case screenGuide:
			return m.updateGuideKeys(msg)
		case screenFeedback:
			if model, cmd, handled := m.updateFeedbackKeys(msg); handled {
				return model, cmd
			}
		}
		if !m.loading {
			m.input, tiCmd = m.input.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chromeHeight := 8
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-chromeHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - chromeHeight
		}
		m.input.Width = msg.Width - 6
		m.bar.Width = min(msg.Width-20, 50)
		m.refreshViewport()

	case spinner.TickMsg:
		if m.loading {
			m.spin, spCmd = m.spin.Update(msg)
			return m, spCmd
		}

	case languagesMsg:
		m.loading = false
		m.languages = msg
		m.errText = ""

	case startedMsg:
		m.loading = false
		if err := m.orch.Begin(msg.start); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.screen = screenChat
		m.input.Focus()
		m.refreshViewport()
		return m, m.refreshCmds(msg.start.Session.ID)

	case sessionMsg:
		m.orch.ReplaceSession(msg)

	case historyMsg:
		m.orch.ReplaceHistory(msg)
		m.refreshViewport()

	case exchangeMsg:
		m.loading = false
		result := m.orch.CompleteExchange(msg.resp)
		m.refreshViewport()
		switch result.Phase {
		case consult.PhaseEmergency:
			// Overlay renders until dismissed.
		case consult.PhaseHealthGuide:
			m.screen = screenGuide
			m.feedback = consult.NewFeedbackCollector(m.api, msg.resp.Session.ID)
			m.setGuideViewport()
		}
		return m, nil

	case exchangeErrMsg:
		m.loading = false
		preserved := m.orch.FailExchange(msg.userID)
		m.input.SetValue(preserved)
		m.errText = fmt.Sprintf("Message failed to send: %v", msg.err)
		m.refreshViewport()
		return m, nil

	case reportMsg:
		m.loading = false
		m.reportURL = msg.PDFURL
		m.status = "Report ready: " + msg.Filename
		if m.screen == screenGuide {
			m.setGuideViewport()
		}
		return m, nil

	case feedbackMsg:
		m.loading = false
		m.feedbackSent = true
		m.status = "Thank you for your feedback!"
		return m, nil

	case errMsg:
		m.loading = false
		m.errText = msg.err.Error()
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m Model) updateLanguageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.languages)-1 {
			m.cursor++
		}
	case "enter":
		if m.loading || len(m.languages) == 0 {
			return m, nil
		}
		m.loading = true
		m.errText = ""
		return m, tea.Batch(m.spin.Tick, m.startCmd(m.languages[m.cursor]))
	case "q", "esc":
		return m, tea.Quit
	case "r":
		if !m.loading && len(m.languages) == 0 {
			m.loading = true
			return m, tea.Batch(m.spin.Tick, m.loadLanguagesCmd())
		}
	}
	return m, nil
}

// updateChatKeys handles chat keys; handled=false passes the key through to
// the text input.
func (m Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit, true
	case tea.KeyEnter:
		if m.loading {
			return m, nil, true
		}
		userMsg, err := m.orch.BeginExchange(m.input.Value())
		if err != nil {
			switch err {
			case models.ErrEmptyMessage:
				// Nothing to send.
			case consult.ErrConversationClosed:
				m.errText = "The consultation has ended."
			default:
				m.errText = err.Error()
			}
			return m, nil, true
		}
		m.input.Reset()
		m.errText = ""
		m.loading = true
		m.refreshViewport()
		return m, tea.Batch(m.spin.Tick, m.sendCmd(userMsg.SessionID, userMsg)), true
	}
	return m, nil, false
}

func (m Model) updateGuideKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "p":
		if m.loading || m.orch.Session() == nil {
			return m, nil
		}
		m.loading = true
		m.errText = ""
		return m, tea.Batch(m.spin.Tick, m.reportCmd(m.orch.Session().ID))
	case "f":
		m.screen = screenFeedback
		m.input.Reset()
		m.input.Placeholder = "Optional comments... (Enter to submit)"
		m.input.Focus()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateFeedbackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if m.feedbackSent {
		switch msg.String() {
		case "q", "esc", "enter":
			return m, tea.Quit, true
		}
		return m, nil, true
	}
	switch msg.String() {
	case "1", "2", "3", "4", "5":
		if m.input.Value() == "" {
			m.rating = int(msg.String()[0] - '0')
			m.errText = ""
			return m, nil, true
		}
	case "esc":
		m.screen = screenGuide
		m.setGuideViewport()
		return m, nil, true
	case "enter":
		if m.loading {
			return m, nil, true
		}
		req := models.CreateFeedbackRequest{Rating: m.rating, Comments: strings.TrimSpace(m.input.Value())}
		if err := req.Validate(); err != nil {
			m.errText = "Please pick a rating from 1 to 5 first."
			return m, nil, true
		}
		m.loading = true
		m.errText = ""
		return m, tea.Batch(m.spin.Tick, m.feedbackCmd(req)), true
	}
	return m, nil, false
}

func (m Model) emergencyOverlayActive() bool {
	return m.orch.Phase() == consult.PhaseEmergency && !m.orch.EmergencyDismissed()
}
