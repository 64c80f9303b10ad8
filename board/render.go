package board

import (
	"strconv"
	"strings"
	"time"

	"github.com/SebPartof2/stw222-bot/discordapi"
	"github.com/SebPartof2/stw222-bot/schedule"
)

// fallbackCategory is consulted when an event names a category the document
// does not define.
const fallbackCategory = "other"

// defaultEmbedColor is a neutral grey for events whose category chain yields
// no usable color.
const defaultEmbedColor = 0x95a5a6

// RenderStream maps one resolved event onto the message a rebuild posts for
// it. The footer marker makes the message recognizable on later reads.
func RenderStream(s schedule.Resolved, doc *schedule.Document) discordapi.OutgoingMessage {
	em := discordapi.Embed{
		Title:       s.Title,
		Description: s.Description,
		Color:       categoryColor(doc.Categories, s.Category),
		Timestamp:   s.At.UTC().Format(time.RFC3339),
		Footer:      &discordapi.EmbedFooter{Text: EncodeStreamMarker(doc.Streamer.DisplayName, s.Key)},
	}
	if s.Image != "" {
		em.Image = &discordapi.EmbedImage{URL: s.Image}
	}
	return discordapi.OutgoingMessage{Embeds: []discordapi.Embed{em}}
}

// RenderHeader builds the trailing sentinel message. Posting it is the last
// step of a rebuild, so its presence means the previous rebuild ran to
// completion.
func RenderHeader(doc *schedule.Document) discordapi.OutgoingMessage {
	title := strings.TrimSpace(doc.Streamer.DisplayName)
	if title == "" {
		title = "Stream schedule"
	} else {
		title += " stream schedule"
	}
	em := discordapi.Embed{
		Title:       title,
		Description: doc.Streamer.Description,
		Color:       defaultEmbedColor,
		Footer:      &discordapi.EmbedFooter{Text: HeaderMarker},
	}
	return discordapi.OutgoingMessage{Embeds: []discordapi.Embed{em}}
}

// categoryColor resolves an event's embed color: the event's category first,
// then the document's fallback category, then the neutral default.
func categoryColor(categories map[string]schedule.Category, id string) int {
	if cat, ok := categories[id]; ok {
		if c, ok := parseHexColor(cat.Color); ok {
			return c
		}
	}
	if cat, ok := categories[fallbackCategory]; ok && id != fallbackCategory {
		if c, ok := parseHexColor(cat.Color); ok {
			return c
		}
	}
	return defaultEmbedColor
}

// parseHexColor converts "#RRGGBB" to its integer value.
func parseHexColor(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}
