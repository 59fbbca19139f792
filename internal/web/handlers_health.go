package web

import (
	"context"
	"net/http"
	"time"

	"github.com/JonMunkholm/propimport/internal/core"
)

// healthTimeout bounds the database ping.
const healthTimeout = 2 * time.Second

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Imports  core.ImportLimiterStatus `json:"imports"`
}

// handleHealth reports 200 when the database answers a ping, 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok", Imports: s.limiter.Status()}
	status := http.StatusOK

	if err := s.db.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Database = core.MapError(err).Code
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}
