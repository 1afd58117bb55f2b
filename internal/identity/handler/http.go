// Package handler exposes register and login over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"medgate/backend/internal/identity/service"
	"medgate/backend/internal/server/respond"
)

// HTTP handles /v1/auth endpoints.
type HTTP struct {
	auth *service.AuthService
}

// NewHTTP returns the auth handler.
func NewHTTP(auth *service.AuthService) *HTTP {
	return &HTTP{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Register handles POST /v1/auth/register.
func (h *HTTP) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered):
			respond.ErrorMessage(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrWeakPassword):
			respond.ErrorMessage(w, http.StatusBadRequest, err.Error())
		default:
			respond.Error(w, err)
		}
		return
	}
	respond.JSON(w, http.StatusCreated, registerResponse{UserID: result.UserID})
}

// Login handles POST /v1/auth/login.
func (h *HTTP) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.ErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.ErrorMessage(w, http.StatusUnauthorized, err.Error())
			return
		}
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, loginResponse{
		UserID:      result.UserID,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}
