// Package discordapi contains minimal helpers to interact with the Discord
// REST API for reading, posting and deleting channel messages with a bot
// token.
package discordapi

import "time"

// Message is a channel message as returned by the API. Only the fields the
// sync engine inspects are mapped.
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    User      `json:"author"`
	Content   string    `json:"content"`
	Embeds    []Embed   `json:"embeds"`
	Timestamp time.Time `json:"timestamp"`
}

// FooterText returns the footer text of the first embed carrying one, or ""
// when the message has no embed footer.
func (m Message) FooterText() string {
	for _, em := range m.Embeds {
		if em.Footer != nil && em.Footer.Text != "" {
			return em.Footer.Text
		}
	}
	return ""
}

// User is the author block on a message.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Embed is the rich content block attached to outgoing and incoming
// messages. Color is a decimal RGB integer; Timestamp is ISO8601.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
}

// EmbedFooter is the small print under an embed. The sync engine stores its
// record markers here.
type EmbedFooter struct {
	Text string `json:"text"`
}

// EmbedImage is the large image block of an embed.
type EmbedImage struct {
	URL string `json:"url"`
}

// OutgoingMessage is the payload for creating a message.
type OutgoingMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}
