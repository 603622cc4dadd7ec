package handlers

import (
	"context"
	"net/http"
)

// Pinger probes store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports whether the time-series store answers a ping.
func Healthz(pinger Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
