package board

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// pageLimit is the API's single-request message page size. State reading
// inspects one page; channels that have grown past it are healed by the
// rebuild path, which clears page by page.
const pageLimit = 100

// Record is the materialized view of one channel message.
type Record struct {
	MessageID string
	Key       string
	CreatedAt time.Time
	Kind      RecordKind
}

// State is everything a cycle knows about the channel: the header sentinel
// if present, owned stream records oldest first, and anything unrecognized.
type State struct {
	Header  *Record
	Streams []Record
	Foreign []Record
}

// Keys returns the stream record keys in channel order, oldest first.
func (s *State) Keys() []string {
	keys := make([]string, 0, len(s.Streams))
	for _, rec := range s.Streams {
		keys = append(keys, rec.Key)
	}
	return keys
}

// ReadState fetches the newest page of channel messages and classifies each
// one by its footer marker. Duplicate headers keep the newest; the rest are
// treated as foreign so the cycle repairs them.
func ReadState(ctx context.Context, ch Channel) (*State, error) {
	msgs, err := ch.Messages(ctx, pageLimit)
	if err != nil {
		return nil, fmt.Errorf("read channel state: %w", err)
	}
	st := &State{}
	for _, m := range msgs {
		kind, key := classify(m.FooterText())
		rec := Record{MessageID: m.ID, CreatedAt: m.Timestamp, Kind: kind, Key: key}
		switch kind {
		case RecordHeader:
			// Messages arrive newest first, so the first header wins.
			if st.Header == nil {
				st.Header = &rec
			} else {
				st.Foreign = append(st.Foreign, rec)
			}
		case RecordStream:
			st.Streams = append(st.Streams, rec)
		default:
			st.Foreign = append(st.Foreign, rec)
		}
	}
	sort.Slice(st.Streams, func(i, j int) bool {
		a, b := st.Streams[i], st.Streams[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return snowflakeLess(a.MessageID, b.MessageID)
	})
	return st, nil
}

// snowflakeLess orders decimal snowflake IDs numerically: shorter strings
// are smaller, equal lengths compare lexicographically.
func snowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}
