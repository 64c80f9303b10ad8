package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HandleHealthz responds to liveness probe requests.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probe requests with detailed system checks.
// The service is ready once it is configured and a refresh cycle has completed
// without error; the startup refresh makes that converge within seconds.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	checks := []struct {
		name string
		fn   func() error
	}{
		{"config", func() error { return h.cfg.ValidateSyncReady() }},
		{"timezone", func() error {
			_, err := time.LoadLocation(h.cfg.Timezone)
			return err
		}},
		{"sync", func() error {
			snap := h.svc.Status()
			if snap.Cycles == 0 {
				return fmt.Errorf("no refresh cycle completed yet")
			}
			if snap.LastError != "" {
				return fmt.Errorf("last cycle failed: %s", snap.LastError)
			}
			return nil
		}},
	}

	for _, check := range checks {
		if err := check.fn(); err != nil {
			// Set headers before writing status code
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
