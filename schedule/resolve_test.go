package schedule

import (
	"strings"
	"testing"
	"time"
)

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s) error = %v", name, err)
	}
	return loc
}

func TestEventTime_PaddingEquivalence(t *testing.T) {
	loc := mustLocation(t, "America/New_York")

	padded, err := EventTime("2025-03-04", "09:05", loc)
	if err != nil {
		t.Fatalf("EventTime(padded) error = %v", err)
	}
	unpadded, err := EventTime("2025-3-4", "9:5", loc)
	if err != nil {
		t.Fatalf("EventTime(unpadded) error = %v", err)
	}
	if !padded.Equal(unpadded) {
		t.Errorf("padded = %v, unpadded = %v, want equal instants", padded, unpadded)
	}
}

func TestEventTime_DSTOffsets(t *testing.T) {
	loc := mustLocation(t, "America/New_York")

	tests := []struct {
		name    string
		date    string
		clock   string
		wantUTC time.Time
	}{
		{
			name:    "winter EST is UTC-5",
			date:    "2025-1-15",
			clock:   "19:00",
			wantUTC: time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "summer EDT is UTC-4",
			date:    "2025-7-15",
			clock:   "19:00",
			wantUTC: time.Date(2025, 7, 15, 23, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EventTime(tt.date, tt.clock, loc)
			if err != nil {
				t.Fatalf("EventTime() error = %v", err)
			}
			if !got.UTC().Equal(tt.wantUTC) {
				t.Errorf("EventTime() = %v, want %v", got.UTC(), tt.wantUTC)
			}
		})
	}
}

func TestEventTime_Invalid(t *testing.T) {
	loc := mustLocation(t, "America/New_York")

	tests := []struct {
		name  string
		date  string
		clock string
	}{
		{name: "empty date", date: "", clock: "19:00"},
		{name: "empty clock", date: "2025-3-4", clock: ""},
		{name: "date missing day", date: "2025-3", clock: "19:00"},
		{name: "non numeric date", date: "2025-mar-4", clock: "19:00"},
		{name: "month out of range", date: "2025-13-4", clock: "19:00"},
		{name: "day out of range", date: "2025-3-42", clock: "19:00"},
		{name: "clock missing minutes", date: "2025-3-4", clock: "19"},
		{name: "hour out of range", date: "2025-3-4", clock: "24:00"},
		{name: "minute out of range", date: "2025-3-4", clock: "19:70"},
		{name: "non numeric clock", date: "2025-3-4", clock: "7pm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EventTime(tt.date, tt.clock, loc); err == nil {
				t.Errorf("EventTime(%q, %q) error = nil, want error", tt.date, tt.clock)
			}
		})
	}
}

func TestResolve_DropsMalformedAndKeepsOrder(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	doc := &Document{
		Streams: []Event{
			{Date: "2025-3-4", StartTime: "19:00", Title: "First", Category: "gaming"},
			{Date: "not-a-date", StartTime: "19:00", Title: "Broken", Category: "gaming"},
			{Date: "2025-3-5", StartTime: "20:00", Title: "Second", Category: "talk"},
			{Date: "2025-3-6", StartTime: "", Title: "Also broken", Category: "talk"},
			{Date: "2025-3-7", StartTime: "9:30", Title: "Third", Category: "gaming"},
		},
	}

	got := Resolve(doc, loc)
	if len(got) != 3 {
		t.Fatalf("Resolve() kept %d events, want 3", len(got))
	}
	wantTitles := []string{"First", "Second", "Third"}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("Resolve()[%d].Title = %q, want %q", i, got[i].Title, want)
		}
	}
	for i, r := range got {
		if r.Key == "" || r.Identity == "" || r.Fingerprint == "" {
			t.Errorf("Resolve()[%d] has empty key fields: %+v", i, r)
		}
		if r.At.IsZero() {
			t.Errorf("Resolve()[%d].At is zero", i)
		}
	}
}

func TestUpcoming_FiltersAndSorts(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, loc)

	doc := &Document{
		Streams: []Event{
			{Date: "2025-3-9", StartTime: "20:00", Title: "Later"},
			{Date: "2025-3-1", StartTime: "19:00", Title: "Past"},
			{Date: "2025-3-6", StartTime: "19:00", Title: "Soonest"},
			{Date: "2025-3-8", StartTime: "10:00", Title: "Middle"},
		},
	}
	resolved := Resolve(doc, loc)

	got := Upcoming(resolved, now, 0)
	wantTitles := []string{"Soonest", "Middle", "Later"}
	if len(got) != len(wantTitles) {
		t.Fatalf("Upcoming() returned %d events, want %d", len(got), len(wantTitles))
	}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("Upcoming()[%d].Title = %q, want %q", i, got[i].Title, want)
		}
	}

	capped := Upcoming(resolved, now, 2)
	if len(capped) != 2 {
		t.Fatalf("Upcoming(n=2) returned %d events, want 2", len(capped))
	}
	if capped[0].Title != "Soonest" || capped[1].Title != "Middle" {
		t.Errorf("Upcoming(n=2) = [%s, %s], want [Soonest, Middle]", capped[0].Title, capped[1].Title)
	}
}

func TestUpcoming_IncludesEventStartingNow(t *testing.T) {
	loc := mustLocation(t, "America/New_York")
	now := time.Date(2025, 3, 6, 19, 0, 0, 0, loc)

	resolved := Resolve(&Document{
		Streams: []Event{{Date: "2025-3-6", StartTime: "19:00", Title: "Starting"}},
	}, loc)

	got := Upcoming(resolved, now, 0)
	if len(got) != 1 {
		t.Fatalf("Upcoming() returned %d events, want 1 (boundary is inclusive)", len(got))
	}
	if !strings.Contains(got[0].Title, "Starting") {
		t.Errorf("Upcoming()[0].Title = %q, want Starting", got[0].Title)
	}
}
