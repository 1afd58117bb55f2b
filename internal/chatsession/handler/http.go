// Package handler exposes session open and close over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"medgate/backend/internal/audit"
	"medgate/backend/internal/chatsession/service"
	"medgate/backend/internal/server/middleware"
	"medgate/backend/internal/server/respond"
	"medgate/backend/internal/telemetry"
	telemetrydomain "medgate/backend/internal/telemetry/domain"
)

// HTTP handles /v1/sessions lifecycle endpoints.
type HTTP struct {
	svc     *service.Service
	emitter telemetry.EventEmitter
	auditor audit.AuditLogger
}

// NewHTTP returns the session handler. emitter and auditor may be nil.
func NewHTTP(svc *service.Service, emitter telemetry.EventEmitter, auditor audit.AuditLogger) *HTTP {
	return &HTTP{svc: svc, emitter: emitter, auditor: auditor}
}

type openSessionRequest struct {
	PatientID string `json:"patient_id"`
	Purpose   string `json:"purpose"`
}

type sessionResponse struct {
	ID        string     `json:"id"`
	PatientID string     `json:"patient_id"`
	Purpose   string     `json:"purpose,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

type endSessionResponse struct {
	SessionID   string    `json:"session_id"`
	TextSummary string    `json:"text_summary"`
	TokensUsed  int       `json:"tokens_used"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Open handles POST /v1/sessions.
func (h *HTTP) Open(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PatientID == "" {
		respond.ErrorMessage(w, http.StatusBadRequest, "patient_id is required")
		return
	}
	requesterID := middleware.RequesterID(r.Context())
	session, err := h.svc.Open(r.Context(), requesterID, req.PatientID, req.Purpose)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(r.Context(), requesterID, "session.open", "chat_session", session.ID)
	}
	telemetry.EmitAsync(h.emitter, r.Context(),
		telemetry.NewEvent(telemetrydomain.EventSessionOpened, requesterID, session.PatientID, session.ID))
	respond.JSON(w, http.StatusCreated, sessionResponse{
		ID:        session.ID,
		PatientID: session.PatientID,
		Purpose:   session.Purpose,
		StartedAt: session.StartedAt,
	})
}

// End handles PATCH /v1/sessions/{id}/end. The response carries the summary
// produced for the ended session.
func (h *HTTP) End(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	requesterID := middleware.RequesterID(r.Context())
	summary, err := h.svc.Close(r.Context(), sessionID, requesterID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(r.Context(), requesterID, "session.end", "chat_session", sessionID)
	}
	telemetry.EmitAsync(h.emitter, r.Context(),
		telemetry.NewEvent(telemetrydomain.EventSessionClosed, requesterID, "", sessionID))
	respond.JSON(w, http.StatusOK, endSessionResponse{
		SessionID:   summary.SessionID,
		TextSummary: summary.TextSummary,
		TokensUsed:  summary.TokensUsed,
		GeneratedAt: summary.GeneratedAt,
	})
}
