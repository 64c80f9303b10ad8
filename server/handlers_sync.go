package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/SebPartof2/stw222-bot/board"
)

// HandleSyncRefresh triggers one reconciliation cycle and reports what it did.
// The cycle runs synchronously on the request context; if the client goes away
// mid-rebuild the next scheduled cycle repairs the channel.
func (h *Handlers) HandleSyncRefresh(w http.ResponseWriter, r *http.Request) {
	h.runCycle(w, r, false)
}

// HandleSyncHardReset forces a clear-and-repost even when the channel already
// matches the schedule. Protected by admin auth in the mux.
func (h *Handlers) HandleSyncHardReset(w http.ResponseWriter, r *http.Request) {
	h.runCycle(w, r, true)
}

func (h *Handlers) runCycle(w http.ResponseWriter, r *http.Request, force bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	out, err := h.svc.Refresh(r.Context(), force)
	if err != nil {
		if errors.Is(err, board.ErrCycleInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		// Cycle failures are upstream problems (schedule host or Discord).
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	outcome := "noop"
	if out.Rebuilt {
		outcome = "rebuild"
	}
	resp := map[string]any{
		"outcome":     outcome,
		"forced":      out.Forced,
		"desired":     out.Desired,
		"dropped":     out.Dropped,
		"posted":      out.Posted,
		"duration_ms": out.Duration.Milliseconds(),
	}
	if out.Reason != "" {
		resp["reason"] = out.Reason
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
