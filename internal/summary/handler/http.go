// Package handler exposes session summaries over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"medgate/backend/internal/server/middleware"
	"medgate/backend/internal/server/respond"
	"medgate/backend/internal/summary/service"
)

// HTTP handles /v1/sessions/{id}/summary.
type HTTP struct {
	svc *service.Service
}

// NewHTTP returns the summary handler.
func NewHTTP(svc *service.Service) *HTTP {
	return &HTTP{svc: svc}
}

type summaryResponse struct {
	SessionID   string          `json:"session_id"`
	TextSummary string          `json:"text_summary"`
	Payload     json.RawMessage `json:"payload"`
	TokensUsed  int             `json:"tokens_used"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Get handles GET /v1/sessions/{id}/summary.
func (h *HTTP) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	requesterID := middleware.RequesterID(r.Context())
	summary, err := h.svc.Get(r.Context(), sessionID, requesterID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, summaryResponse{
		SessionID:   summary.SessionID,
		TextSummary: summary.TextSummary,
		Payload:     json.RawMessage(summary.Payload),
		TokensUsed:  summary.TokensUsed,
		GeneratedAt: summary.GeneratedAt,
	})
}
