package server

import (
	"encoding/json"
	"net/http"
)

// HandleStatus returns a lightweight status summary: cycle counters, the last
// outcome, and the effective sync configuration.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snap := h.svc.Status()
	resp := map[string]any{
		"cycles":       snap.Cycles,
		"rebuilds":     snap.Rebuilds,
		"noops":        snap.NoOps,
		"failures":     snap.Failures,
		"last_desired": snap.LastDesired,
	}
	if !snap.LastRun.IsZero() {
		resp["last_run"] = snap.LastRun
	}
	if snap.LastOutcome != "" {
		resp["last_outcome"] = snap.LastOutcome
	}
	if snap.LastReason != "" {
		resp["last_reason"] = snap.LastReason
	}
	if snap.LastError != "" {
		resp["last_error"] = snap.LastError
	}

	resp["sync_config"] = map[string]any{
		"channel_id": h.cfg.ChannelID,
		"timezone":   h.cfg.Timezone,
		"refresh":    h.cfg.RefreshSpec,
		"post_delay": h.cfg.PostDelay.String(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
