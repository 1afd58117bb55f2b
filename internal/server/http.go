// Package server assembles the HTTP router and owns server lifecycle.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	chatsessionhandler "medgate/backend/internal/chatsession/handler"
	healthhandler "medgate/backend/internal/health/handler"
	identityhandler "medgate/backend/internal/identity/handler"
	messagehandler "medgate/backend/internal/message/handler"
	otphandler "medgate/backend/internal/otp/handler"
	patienthandler "medgate/backend/internal/patient/handler"
	"medgate/backend/internal/security"
	"medgate/backend/internal/server/middleware"
	summaryhandler "medgate/backend/internal/summary/handler"
)

// Handlers groups the per-module HTTP handlers wired into the router.
type Handlers struct {
	Auth    *identityhandler.HTTP
	OTP     *otphandler.HTTP
	Session *chatsessionhandler.HTTP
	Message *messagehandler.HTTP
	Summary *summaryhandler.HTTP
	Patient *patienthandler.HTTP
	Health  *healthhandler.HTTP
}

// NewRouter builds the route table. /healthz and /v1/auth are public; the dev
// OTP endpoint is mounted only when devOTP is true; everything else requires a
// bearer token.
func NewRouter(h Handlers, tokens *security.TokenProvider, devOTP bool) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recovery, middleware.Logging)

	r.HandleFunc("/healthz", h.Health.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/auth/register", h.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/login", h.Auth.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(middleware.Auth(tokens))
	if devOTP {
		api.HandleFunc("/dev/otp/{challenge_id}", h.OTP.DevCode).Methods(http.MethodGet)
	}
	api.HandleFunc("/otp/request", h.OTP.Request).Methods(http.MethodPost)
	api.HandleFunc("/otp/verify", h.OTP.Verify).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.Session.Open).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/end", h.Session.End).Methods(http.MethodPatch)
	api.HandleFunc("/sessions/{id}/messages", h.Message.Post).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/messages", h.Message.List).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/summary", h.Summary.Get).Methods(http.MethodGet)
	api.HandleFunc("/patients/{id}/summary", h.Patient.GetSummary).Methods(http.MethodGet)

	return r
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv *http.Server
}

// New returns a Server listening on addr with the given handler.
func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", s.srv.Addr).Info("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
