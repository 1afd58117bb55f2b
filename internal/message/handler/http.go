// Package handler exposes the message pipeline over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"medgate/backend/internal/message/service"
	"medgate/backend/internal/server/middleware"
	"medgate/backend/internal/server/respond"
	"medgate/backend/internal/telemetry"
	telemetrydomain "medgate/backend/internal/telemetry/domain"
)

// HTTP handles /v1/sessions/{id}/messages endpoints.
type HTTP struct {
	svc     *service.Service
	emitter telemetry.EventEmitter
}

// NewHTTP returns the message handler. emitter may be nil.
func NewHTTP(svc *service.Service, emitter telemetry.EventEmitter) *HTTP {
	return &HTTP{svc: svc, emitter: emitter}
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type postMessageResponse struct {
	Reply string `json:"reply"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type transcriptResponse struct {
	SessionID string            `json:"session_id"`
	Messages  []messageResponse `json:"messages"`
}

// Post handles POST /v1/sessions/{id}/messages.
func (h *HTTP) Post(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		respond.ErrorMessage(w, http.StatusBadRequest, "content is required")
		return
	}
	requesterID := middleware.RequesterID(r.Context())
	reply, err := h.svc.Post(r.Context(), sessionID, requesterID, req.Content)
	if err != nil {
		respond.Error(w, err)
		return
	}
	telemetry.EmitAsync(h.emitter, r.Context(),
		telemetry.NewEvent(telemetrydomain.EventMessagePosted, requesterID, "", sessionID))
	respond.JSON(w, http.StatusOK, postMessageResponse{Reply: reply})
}

// List handles GET /v1/sessions/{id}/messages.
func (h *HTTP) List(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	requesterID := middleware.RequesterID(r.Context())
	messages, err := h.svc.Transcript(r.Context(), sessionID, requesterID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	out := transcriptResponse{SessionID: sessionID, Messages: make([]messageResponse, 0, len(messages))}
	for _, m := range messages {
		out.Messages = append(out.Messages, messageResponse{
			ID:        m.ID,
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
