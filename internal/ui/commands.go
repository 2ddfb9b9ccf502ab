package ui

import (
	"context"
	"time"

	"github.com/arogya-health/arogya/internal/consult"
	"github.com/arogya-health/arogya/internal/models"
	tea "github.com/charmbracelet/bubbletea"
)

// requestTimeout bounds each network command.
const requestTimeout = 60 * time.Second

// Messages resolving network commands back into the event loop.
type (
	languagesMsg []models.Language

	startedMsg struct {
		start *consult.StartResult
	}

	// exchangeMsg carries the server response for the optimistic message with
	// userID; exchangeErrMsg triggers its compensating rollback.
	exchangeMsg struct {
		userID string
		resp   *models.ExchangeResponse
	}
	exchangeErrMsg struct {
		userID string
		err    error
	}

	reportMsg   *models.PDFReportResponse
	feedbackMsg struct{}
	errMsg      struct{ err error }
	historyMsg  []models.Message
	sessionMsg  *models.Session
)

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (m Model) loadLanguagesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		langs, err := m.boot.Languages(ctx)
		if err != nil {
			return errMsg{err}
		}
		return languagesMsg(langs)
	}
}

func (m Model) startCmd(language models.Language) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		start, err := m.boot.Start(ctx, language)
		if err != nil {
			return errMsg{err}
		}
		return startedMsg{start}
	}
}

// refreshCmds re-reads the authoritative session and transcript at
// conversation entry. Failures degrade silently; the orchestrator keeps its
// local state.
func (m Model) refreshCmds(sessionID string) tea.Cmd {
	return tea.Batch(
		func() tea.Msg {
			ctx, cancel := withTimeout()
			defer cancel()
			session, err := m.api.GetSession(ctx, sessionID)
			if err != nil {
				return nil
			}
			return sessionMsg(session)
		},
		func() tea.Msg {
			ctx, cancel := withTimeout()
			defer cancel()
			msgs, err := m.api.GetMessages(ctx, sessionID)
			if err != nil {
				return nil
			}
			return historyMsg(msgs)
		},
	)
}

// sendCmd performs the network leg of an exchange begun with BeginExchange.
func (m Model) sendCmd(sessionID string, userMsg models.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		resp, err := m.api.SendMessage(ctx, sessionID, models.CreateMessageRequest{
			Content:  userMsg.Content,
			Language: userMsg.Language,
		})
		if err != nil {
			return exchangeErrMsg{userID: userMsg.ID, err: err}
		}
		return exchangeMsg{userID: userMsg.ID, resp: resp}
	}
}

func (m Model) reportCmd(sessionID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		resp, err := m.reports.Generate(ctx, sessionID, true)
		if err != nil {
			return errMsg{err}
		}
		return reportMsg(resp)
	}
}

func (m Model) feedbackCmd(req models.CreateFeedbackRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if err := m.feedback.Submit(ctx, req); err != nil {
			return errMsg{err}
		}
		return feedbackMsg{}
	}
}
