package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/onnwee/speedbot/db"
	"github.com/onnwee/speedbot/oauth"
)

// Handlers holds the dependencies shared by the HTTP handlers.
type Handlers struct {
	db      *sql.DB
	started time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(db *sql.DB) *Handlers {
	return &Handlers{db: db, started: time.Now()}
}

// HandleHealthz responds to liveness probe requests by checking database connectivity.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests. Ready means the database
// answers and the schema has been migrated (bot_users exists).
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"database", func() error { return h.db.PingContext(r.Context()) }},
		{"schema", func() error {
			var n int
			return h.db.QueryRowContext(r.Context(),
				"SELECT COUNT(*) FROM bot_users").Scan(&n)
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": check.name,
				"error":        err.Error(),
			})
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HandleStatus reports uptime, the number of registered channels and the
// time of the last successful token refresh.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var channels int
	if err := h.db.QueryRowContext(r.Context(),
		"SELECT COUNT(*) FROM bot_users").Scan(&channels); err != nil {
		http.Error(w, fmt.Sprintf("status query: %v", err), http.StatusInternalServerError)
		return
	}
	status := map[string]any{
		"status":   "ok",
		"uptime":   time.Since(h.started).Round(time.Second).String(),
		"channels": channels,
	}
	if stamp, err := db.GetKV(r.Context(), h.db, oauth.LastRefreshKey("twitch")); err == nil && stamp != "" {
		status["token_refreshed_at"] = stamp
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(status)
}
