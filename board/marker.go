package board

import "strings"

// Ownership of a message is established through its embed footer. A stream
// record's footer is "<display name> | <date>|<startTime>|<fingerprint>";
// the trailing header carries a fixed sentinel instead. Because keys live in
// the channel itself they survive restarts with no local storage.

const (
	// markerSep delimits the display-name prefix and the key segments.
	markerSep = "|"

	// HeaderMarker tags the single message posted after a completed rebuild.
	// It contains no separator, so it can never parse as a stream key.
	HeaderMarker = "stw222 schedule board"
)

// RecordKind classifies a channel message by its footer marker.
type RecordKind int

const (
	// RecordForeign is anything the bot does not recognize as its own:
	// user messages, plain embeds, or markers too mangled to parse.
	RecordForeign RecordKind = iota
	// RecordHeader is the rebuild-complete sentinel.
	RecordHeader
	// RecordStream is a posted schedule entry carrying a key.
	RecordStream
)

func (k RecordKind) String() string {
	switch k {
	case RecordHeader:
		return "header"
	case RecordStream:
		return "stream"
	default:
		return "foreign"
	}
}

// EncodeStreamMarker builds the footer text for a stream record. Separators
// are stripped from the display name so the key always starts after the
// first one.
func EncodeStreamMarker(displayName, key string) string {
	name := strings.TrimSpace(strings.ReplaceAll(displayName, markerSep, "/"))
	if name == "" {
		name = "schedule"
	}
	return name + " " + markerSep + " " + key
}

// classify parses a footer into its record kind and, for stream records, the
// embedded key. A stream key is everything after the first separator and
// must itself hold at least two non-empty segments.
func classify(footer string) (RecordKind, string) {
	f := strings.TrimSpace(footer)
	if f == "" {
		return RecordForeign, ""
	}
	if f == HeaderMarker {
		return RecordHeader, ""
	}
	i := strings.Index(f, markerSep)
	if i < 0 {
		return RecordForeign, ""
	}
	key := strings.TrimSpace(f[i+len(markerSep):])
	segments := strings.Split(key, markerSep)
	if len(segments) < 2 {
		return RecordForeign, ""
	}
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			return RecordForeign, ""
		}
	}
	return RecordStream, key
}
