// Package schedule fetches the remotely hosted stream schedule document and
// resolves its entries into concrete, keyed events for a sync cycle.
package schedule

// Document is the top-level schedule payload. The remote file is the single
// source of truth; nothing in it is persisted locally.
type Document struct {
	Timezone   string              `json:"timezone"`
	Streamer   Streamer            `json:"streamer"`
	Categories map[string]Category `json:"categories"`
	Streams    []Event             `json:"streams"`
}

// Streamer is the profile block rendered into the channel header.
type Streamer struct {
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// Category carries the presentation attributes for a class of streams.
// Color is a "#RRGGBB" hex string.
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Event is one raw schedule entry exactly as the document carries it. Date is
// "YYYY-M-D" and StartTime is "H:MM", both without guaranteed zero padding.
type Event struct {
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category"`
}
