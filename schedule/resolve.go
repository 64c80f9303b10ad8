package schedule

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Resolved is an Event plus everything a sync cycle derives from it: the
// absolute start instant in the reference location and the identity,
// fingerprint and record key. Resolved values are recomputed every cycle.
type Resolved struct {
	Event
	At          time.Time
	Identity    string
	Fingerprint string
	Key         string
}

// Resolve normalizes every event in the document against the reference
// location, preserving document order. Events with a missing or malformed
// date or start time are dropped with a warning so one bad entry cannot
// poison the batch.
func Resolve(doc *Document, loc *time.Location) []Resolved {
	out := make([]Resolved, 0, len(doc.Streams))
	for i, ev := range doc.Streams {
		at, err := EventTime(ev.Date, ev.StartTime, loc)
		if err != nil {
			slog.Warn("dropping malformed schedule event",
				slog.Int("index", i),
				slog.String("title", ev.Title),
				slog.Any("err", err))
			continue
		}
		out = append(out, Resolved{
			Event:       ev,
			At:          at,
			Identity:    Identity(ev),
			Fingerprint: Fingerprint(ev),
			Key:         Key(ev),
		})
	}
	return out
}

// EventTime converts a schedule date ("2025-3-4" or "2025-03-04") and wall
// clock ("9:05" or "09:05") into the instant at which that wall clock occurs
// in loc. Single-digit components are accepted; the zone-aware construction
// stays correct across daylight-saving transitions.
func EventTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	year, month, day, err := splitDate(dateStr)
	if err != nil {
		return time.Time{}, err
	}
	hour, minute, err := splitClock(timeStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc), nil
}

func splitDate(s string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q", s)
	}
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if month, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if day, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("date %q out of range", s)
	}
	return year, month, day, nil
}

func splitClock(s string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid start time %q", s)
	}
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", s, err)
	}
	if minute, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("invalid start time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("start time %q out of range", s)
	}
	return hour, minute, nil
}

// Upcoming filters events starting at or after now and returns up to n of
// them, soonest first. n <= 0 means no cap.
func Upcoming(streams []Resolved, now time.Time, n int) []Resolved {
	out := make([]Resolved, 0, len(streams))
	for _, s := range streams {
		if s.At.Before(now) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
