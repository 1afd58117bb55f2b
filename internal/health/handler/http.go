// Package handler exposes the liveness/readiness probe.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"medgate/backend/internal/server/respond"
)

// HTTP handles GET /healthz.
type HTTP struct {
	db *sql.DB
}

// NewHTTP returns the health handler. db may be nil; then only liveness is
// reported.
func NewHTTP(db *sql.DB) *HTTP {
	return &HTTP{db: db}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Healthz reports ok when the process is up and the database answers a ping.
func (h *HTTP) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "db unreachable"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
