// Package handler exposes patient chart summaries over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"medgate/backend/internal/audit"
	"medgate/backend/internal/patient/service"
	"medgate/backend/internal/server/middleware"
	"medgate/backend/internal/server/respond"
)

// HTTP handles /v1/patients endpoints.
type HTTP struct {
	svc     *service.Service
	auditor audit.AuditLogger
}

// NewHTTP returns the patient handler. auditor may be nil.
func NewHTTP(svc *service.Service, auditor audit.AuditLogger) *HTTP {
	return &HTTP{svc: svc, auditor: auditor}
}

type chartSummaryResponse struct {
	PatientID string          `json:"patient_id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GetSummary handles GET /v1/patients/{id}/summary.
func (h *HTTP) GetSummary(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["id"]
	requesterID := middleware.RequesterID(r.Context())
	summary, err := h.svc.GetSummary(r.Context(), requesterID, patientID)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(r.Context(), requesterID, "patient.summary.read", "patient", patientID)
	}
	respond.JSON(w, http.StatusOK, chartSummaryResponse{
		PatientID: summary.PatientID,
		Data:      json.RawMessage(summary.Data),
		UpdatedAt: summary.UpdatedAt,
	})
}
