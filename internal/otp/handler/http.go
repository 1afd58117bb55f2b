// Package handler exposes OTP issuance and verification over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"medgate/backend/internal/apperrors"
	"medgate/backend/internal/audit"
	"medgate/backend/internal/devotp"
	"medgate/backend/internal/otp/service"
	"medgate/backend/internal/server/middleware"
	"medgate/backend/internal/server/respond"
	"medgate/backend/internal/telemetry"
	telemetrydomain "medgate/backend/internal/telemetry/domain"
)

// HTTP handles /v1/otp endpoints.
type HTTP struct {
	svc      *service.Service
	devStore devotp.Store
	emitter  telemetry.EventEmitter
	auditor  audit.AuditLogger
}

// NewHTTP returns the OTP handler. devStore may be nil; then the dev code
// endpoint always returns 404. emitter and auditor may be nil.
func NewHTTP(svc *service.Service, devStore devotp.Store, emitter telemetry.EventEmitter, auditor audit.AuditLogger) *HTTP {
	return &HTTP{svc: svc, devStore: devStore, emitter: emitter, auditor: auditor}
}

type requestOTPRequest struct {
	NationalCode string `json:"national_code"`
}

type requestOTPResponse struct {
	ChallengeID string `json:"challenge_id"`
}

type verifyOTPRequest struct {
	NationalCode string `json:"national_code"`
	Code         string `json:"code"`
}

type verifyOTPResponse struct {
	PatientID string `json:"patient_id"`
	Granted   bool   `json:"granted"`
}

type devCodeResponse struct {
	Code string `json:"code"`
}

// Request handles POST /v1/otp/request. The raw code travels out of band
// (SMS, or the dev store in dev mode); it is never in this response.
func (h *HTTP) Request(w http.ResponseWriter, r *http.Request) {
	var req requestOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NationalCode == "" {
		respond.ErrorMessage(w, http.StatusBadRequest, "national_code is required")
		return
	}
	result, err := h.svc.Issue(r.Context(), req.NationalCode)
	if err != nil {
		respond.Error(w, err)
		return
	}
	requesterID := middleware.RequesterID(r.Context())
	telemetry.EmitAsync(h.emitter, r.Context(),
		telemetry.NewEvent(telemetrydomain.EventOTPIssued, requesterID, result.PatientID, ""))
	respond.JSON(w, http.StatusCreated, requestOTPResponse{ChallengeID: result.ChallengeID})
}

// Verify handles POST /v1/otp/verify. Success appends a grant for the caller.
func (h *HTTP) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NationalCode == "" || req.Code == "" {
		respond.ErrorMessage(w, http.StatusBadRequest, "national_code and code are required")
		return
	}
	requesterID := middleware.RequesterID(r.Context())
	patientID, err := h.svc.Verify(r.Context(), requesterID, req.NationalCode, req.Code)
	if err != nil {
		if errors.Is(err, apperrors.ErrAccessDenied) {
			telemetry.EmitAsync(h.emitter, r.Context(),
				telemetry.NewEvent(telemetrydomain.EventOTPDenied, requesterID, "", ""))
		}
		respond.Error(w, err)
		return
	}
	if h.auditor != nil {
		h.auditor.LogEvent(r.Context(), requesterID, "otp.verify", "patient", patientID)
	}
	telemetry.EmitAsync(h.emitter, r.Context(),
		telemetry.NewEvent(telemetrydomain.EventOTPVerified, requesterID, patientID, ""))
	respond.JSON(w, http.StatusOK, verifyOTPResponse{PatientID: patientID, Granted: true})
}

// DevCode handles GET /v1/dev/otp/{challenge_id}. Available only when dev OTP
// mode is enabled; otherwise 404 for every challenge.
func (h *HTTP) DevCode(w http.ResponseWriter, r *http.Request) {
	if h.devStore == nil {
		respond.ErrorMessage(w, http.StatusNotFound, "not found")
		return
	}
	challengeID := mux.Vars(r)["challenge_id"]
	code, ok := h.devStore.Get(r.Context(), challengeID)
	if !ok {
		respond.ErrorMessage(w, http.StatusNotFound, "unknown or expired challenge")
		return
	}
	respond.JSON(w, http.StatusOK, devCodeResponse{Code: code})
}
