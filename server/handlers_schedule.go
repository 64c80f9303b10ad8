package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/SebPartof2/stw222-bot/schedule"
)

// streamView is the JSON shape for one upcoming stream.
type streamView struct {
	At          time.Time `json:"at"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Key         string    `json:"key"`
}

func toStreamView(ev schedule.Resolved) streamView {
	return streamView{
		At:          ev.At,
		Date:        ev.Date,
		StartTime:   ev.StartTime,
		Title:       ev.Title,
		Description: ev.Description,
		Image:       ev.Image,
		Category:    ev.Category,
		Key:         ev.Key,
	}
}

// HandleSchedule returns upcoming streams without touching the channel.
// ?limit=N caps the list; 0 or absent returns everything upcoming.
func (h *Handlers) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := parseIntQuery(r, "limit", 0)
	if limit < 0 {
		limit = 0
	}
	if limit > 200 {
		limit = 200
	}
	doc, upcoming, err := h.svc.Preview(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	list := make([]streamView, 0, len(upcoming))
	for _, ev := range upcoming {
		list = append(list, toStreamView(ev))
	}
	resp := map[string]any{
		"streamer": doc.Streamer.DisplayName,
		"timezone": h.cfg.Timezone,
		"streams":  list,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleNextStream returns the soonest upcoming stream, or 404 when the
// schedule has nothing left.
func (h *Handlers) HandleNextStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	_, next, err := h.svc.Next(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if next == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toStreamView(*next))
}
