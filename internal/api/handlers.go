package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/arogya-health/arogya/internal/engine"
	"github.com/arogya-health/arogya/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Dr. Arogya AI Health Companion - Ready to Help!",
	})
}

func (s *Server) languagesHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.languagesHandler: processing request", "path", r.URL.Path)
	writeJSONResponse(w, http.StatusOK, models.Envelope("Languages retrieved", engine.Languages()))
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req models.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	session, err := s.engine.CreateSession(req)
	if err != nil {
		slog.Error("Server.createSessionHandler: failed to create session", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error creating session"))
		return
	}
	slog.Info("Server.createSessionHandler: session created", "session_id", session.ID)
	writeJSONResponse(w, http.StatusOK, models.Envelope("Session created successfully", session))
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	session, err := s.st.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
			return
		}
		slog.Error("Server.getSessionHandler: failed to load session", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error retrieving session"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Envelope("Session retrieved", session))
}

func (s *Server) setLanguageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sessionID := chi.URLParam(r, "sessionID")
	var sel models.LanguageSelection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		slog.Warn("Server.setLanguageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if sel.SessionID == "" {
		sel.SessionID = sessionID
	}
	welcome, err := s.engine.BindLanguage(sessionID, sel)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionNotFound):
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		case errors.Is(err, models.ErrMissingLanguage), errors.Is(err, models.ErrMissingSessionID), errors.Is(err, models.ErrUnknownLanguage):
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		default:
			slog.Error("Server.setLanguageHandler: failed to bind language", "error", err, "session_id", sessionID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error setting language"))
		}
		return
	}
	slog.Info("Server.setLanguageHandler: language set", "session_id", sessionID, "language", sel.SelectedLanguage)
	writeJSONResponse(w, http.StatusOK, models.Envelope("Language set successfully", map[string]*models.Message{"message": welcome}))
}

// sendMessageHandler runs one conversation exchange. Unlike the other
// endpoints it returns the composite exchange body directly, without the
// success envelope.
func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sessionID := chi.URLParam(r, "sessionID")
	var req models.CreateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.sendMessageHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	resp, err := s.engine.Exchange(r.Context(), sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrSessionNotFound):
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		case errors.Is(err, models.ErrEmptyMessage), errors.Is(err, models.ErrMessageTooLong):
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		default:
			slog.Error("Server.sendMessageHandler: exchange failed", "error", err, "session_id", sessionID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error processing message"))
		}
		return
	}
	slog.Debug("Server.sendMessageHandler: exchange complete",
		"session_id", sessionID, "stage", resp.Session.CurrentStage, "emergency", resp.EmergencyAlert)
	writeJSONResponse(w, http.StatusOK, resp)
}

func (s *Server) getMessagesHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	msgs, err := s.st.GetMessages(sessionID)
	if err != nil {
		slog.Error("Server.getMessagesHandler: failed to load messages", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error retrieving messages"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Envelope("Messages retrieved", msgs))
}

func (s *Server) getHealthGuideHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	guide, err := s.st.GetHealthGuide(sessionID)
	if err != nil {
		if errors.Is(err, models.ErrGuideNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Health guide not found"))
			return
		}
		slog.Error("Server.getHealthGuideHandler: failed to load guide", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error retrieving health guide"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Envelope("Health guide retrieved", guide))
}

// generatePDFHandler renders the health report. Like the exchange endpoint,
// it returns a bare response body.
func (s *Server) generatePDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sessionID := chi.URLParam(r, "sessionID")
	var req models.PDFReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.generatePDFHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	session, err := s.st.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
			return
		}
		slog.Error("Server.generatePDFHandler: failed to load session", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error generating PDF"))
		return
	}
	guide, err := s.st.GetHealthGuide(sessionID)
	if err != nil {
		if errors.Is(err, models.ErrGuideNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Health guide not found"))
			return
		}
		slog.Error("Server.generatePDFHandler: failed to load guide", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error generating PDF"))
		return
	}

	var messages []models.Message
	if req.IncludeChatHistory {
		messages, err = s.st.GetMessages(sessionID)
		if err != nil {
			slog.Error("Server.generatePDFHandler: failed to load messages", "error", err, "session_id", sessionID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error generating PDF"))
			return
		}
	}

	filename, err := s.reports.GenerateHealthReport(session, guide, messages, req.IncludeChatHistory)
	if err != nil {
		slog.Error("Server.generatePDFHandler: failed to render report", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error generating PDF"))
		return
	}
	slog.Info("Server.generatePDFHandler: report generated", "session_id", sessionID, "filename", filename)
	writeJSONResponse(w, http.StatusOK, models.PDFReportResponse{
		PDFURL:    "/reports/" + filename,
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *Server) downloadReportHandler(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	path := s.reports.ReportPath(filename)
	if _, err := os.Stat(path); err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Report not found"))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sessionID := chi.URLParam(r, "sessionID")
	var req models.CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.feedbackHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	fb, err := s.engine.SubmitFeedback(sessionID, req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidRating) {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		slog.Error("Server.feedbackHandler: failed to record feedback", "error", err, "session_id", sessionID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Error submitting feedback"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Envelope("Feedback submitted successfully", fb))
}
