package departures

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func raw(line, at string) RawDeparture {
	return RawDeparture{Line: line, ScheduledTime: at, Direction: "Dworzec Centralny"}
}

func TestSelect_NightRollover(t *testing.T) {
	now := date(2025, time.June, 8, 1, 45)
	res := Select([]RawDeparture{raw("N31", "26:10")}, now, 1, DefaultOptions())

	if len(res.Departures) != 1 {
		t.Fatalf("expected 1 departure, got %d", len(res.Departures))
	}
	d := res.Departures[0]
	if !d.Timestamp.Equal(date(2025, time.June, 8, 2, 10)) {
		t.Errorf("expected 2025-06-08 02:10, got %s", d.Timestamp)
	}
	if d.MinutesUntil != 25 {
		t.Errorf("expected 25 minutes, got %d", d.MinutesUntil)
	}
	if d.Display != "25 min" {
		t.Errorf("expected display '25 min', got %q", d.Display)
	}
	if !d.NightService {
		t.Error("26:10 should be flagged as night service")
	}
	if res.Note != "" {
		t.Errorf("non-empty result should have no note, got %q", res.Note)
	}
}

func TestSelect_PostMidnightLiteralRetained(t *testing.T) {
	now := date(2025, time.June, 8, 1, 50)
	res := Select([]RawDeparture{raw("N02", "02:15")}, now, 1, DefaultOptions())

	d, ok := res.Next()
	if !ok {
		t.Fatal("02:15 must not be dropped as already departed")
	}
	if d.MinutesUntil != 25 {
		t.Errorf("expected 25 minutes, got %d", d.MinutesUntil)
	}
	if !d.Timestamp.Equal(date(2025, time.June, 8, 2, 15)) {
		t.Errorf("expected 2025-06-08 02:15, got %s", d.Timestamp)
	}
}

func TestSelect_EmptyRecords(t *testing.T) {
	now := date(2025, time.June, 7, 10, 0)
	res := Select(nil, now, 3, DefaultOptions())

	if !res.Empty() {
		t.Fatalf("expected empty result, got %d departures", len(res.Departures))
	}
	if res.Departures == nil {
		t.Error("departures should be an empty slice, not nil")
	}
	if !strings.Contains(res.Note, "No upcoming schedule available") {
		t.Errorf("unexpected note %q", res.Note)
	}
	if res.Note != NoScheduleNote {
		t.Errorf("note should be verbatim, got %q", res.Note)
	}
	if res.Display != "60+ min" {
		t.Errorf("expected sentinel '60+ min', got %q", res.Display)
	}
}

func TestSelect_AlreadyDepartedFiltered(t *testing.T) {
	now := date(2025, time.June, 7, 9, 5)
	res := Select([]RawDeparture{raw("151", "09:00")}, now, 1, DefaultOptions())

	if !res.Empty() {
		t.Fatalf("09:00 has departed at 09:05, got %+v", res.Departures)
	}
	if res.Note != NoScheduleNote {
		t.Errorf("expected no-schedule note, got %q", res.Note)
	}
}

func TestSelect_FewerThanRequested(t *testing.T) {
	now := date(2025, time.June, 7, 9, 5)
	records := []RawDeparture{raw("151", "08:00"), raw("151", "09:30"), raw("151", "bad")}
	res := Select(records, now, 3, DefaultOptions())

	if len(res.Departures) != 1 {
		t.Fatalf("expected exactly 1 departure, got %d", len(res.Departures))
	}
	if res.Skipped != 1 {
		t.Errorf("expected 1 skipped record, got %d", res.Skipped)
	}
}

func TestSelect_OrderingAndTies(t *testing.T) {
	now := date(2025, time.June, 7, 10, 0)
	records := []RawDeparture{
		raw("A", "10:30"),
		raw("B", "10:15"),
		raw("C", "10:30"),
		raw("D", "10:20"),
	}

	tests := []struct {
		name     string
		k        int
		expected []string
	}{
		{name: "k=3", k: 3, expected: []string{"B", "D", "A"}},
		{name: "k=4 keeps tie order", k: 4, expected: []string{"B", "D", "A", "C"}},
		{name: "k=0 treated as 1", k: 0, expected: []string{"B"}},
		{name: "k larger than set", k: 10, expected: []string{"B", "D", "A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Select(records, now, tt.k, DefaultOptions())
			if len(res.Departures) != len(tt.expected) {
				t.Fatalf("expected %d departures, got %d", len(tt.expected), len(res.Departures))
			}
			for i, line := range tt.expected {
				if res.Departures[i].Line != line {
					t.Errorf("position %d: expected %s, got %s", i, line, res.Departures[i].Line)
				}
				if i > 0 && res.Departures[i].Timestamp.Before(res.Departures[i-1].Timestamp) {
					t.Errorf("departures not ordered at %d", i)
				}
			}
		})
	}
}

func TestSelect_AcrossMidnight(t *testing.T) {
	now := date(2025, time.June, 7, 23, 50)
	records := []RawDeparture{
		raw("N31", "00:20"),
		raw("N31", "23:45"),
		raw("N31", "24:10"),
		raw("N31", "23:55"),
		raw("N31", "05:30"),
	}
	res := Select(records, now, 3, DefaultOptions())

	want := []int{5, 20, 30}
	if len(res.Departures) != len(want) {
		t.Fatalf("expected %d departures, got %d", len(want), len(res.Departures))
	}
	for i, mins := range want {
		if res.Departures[i].MinutesUntil != mins {
			t.Errorf("position %d: expected %d minutes, got %d", i, mins, res.Departures[i].MinutesUntil)
		}
	}
}

func TestSelect_MinutesAndCeiling(t *testing.T) {
	tests := []struct {
		name        string
		now         time.Time
		at          string
		opts        Options
		wantMinutes int
		wantDisplay string
	}{
		{name: "rounds partial minute up", now: time.Date(2025, time.June, 7, 10, 0, 10, 0, warsawSummer), at: "10:10", opts: DefaultOptions(), wantMinutes: 10, wantDisplay: "10 min"},
		{name: "departing now", now: date(2025, time.June, 7, 10, 0), at: "10:00", opts: DefaultOptions(), wantMinutes: 0, wantDisplay: "0 min"},
		{name: "below ceiling", now: date(2025, time.June, 7, 10, 0), at: "10:59", opts: DefaultOptions(), wantMinutes: 59, wantDisplay: "59 min"},
		{name: "at ceiling", now: date(2025, time.June, 7, 10, 0), at: "11:00", opts: DefaultOptions(), wantMinutes: 60, wantDisplay: "60+ min"},
		{name: "custom ceiling", now: date(2025, time.June, 7, 10, 0), at: "10:45", opts: Options{CeilingMinutes: 30, CeilingLabel: ">=30 min"}, wantMinutes: 45, wantDisplay: ">=30 min"},
		{name: "zero options fall back to defaults", now: date(2025, time.June, 7, 10, 0), at: "12:00", opts: Options{}, wantMinutes: 120, wantDisplay: "60+ min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Select([]RawDeparture{raw("151", tt.at)}, tt.now, 1, tt.opts)
			d, ok := res.Next()
			if !ok {
				t.Fatal("expected a departure")
			}
			if d.MinutesUntil != tt.wantMinutes {
				t.Errorf("expected %d minutes, got %d", tt.wantMinutes, d.MinutesUntil)
			}
			if d.Display != tt.wantDisplay {
				t.Errorf("expected display %q, got %q", tt.wantDisplay, d.Display)
			}
			if res.Display != tt.wantDisplay {
				t.Errorf("representative display should follow first departure, got %q", res.Display)
			}
		})
	}
}

func TestSelect_Idempotent(t *testing.T) {
	now := date(2025, time.June, 8, 1, 45)
	records := []RawDeparture{raw("N31", "26:10"), raw("N31", "02:40"), raw("N31", "x"), raw("N31", "25:00")}

	a, err := json.Marshal(Select(records, now, 3, DefaultOptions()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(Select(records, now, 3, DefaultOptions()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("results differ:\n%s\n%s", a, b)
	}
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	now := date(2025, time.June, 7, 10, 0)
	records := []RawDeparture{raw("A", "10:30"), raw("B", "10:15")}
	_ = Select(records, now, 2, DefaultOptions())

	if records[0].Line != "A" || records[1].Line != "B" {
		t.Errorf("input order changed: %+v", records)
	}
}

func TestMinutesUntil(t *testing.T) {
	now := date(2025, time.June, 7, 10, 0)
	tests := []struct {
		name     string
		at       time.Time
		expected int
	}{
		{name: "past", at: now.Add(-time.Minute), expected: 0},
		{name: "same instant", at: now, expected: 0},
		{name: "one second", at: now.Add(time.Second), expected: 1},
		{name: "exact minutes", at: now.Add(25 * time.Minute), expected: 25},
		{name: "just over", at: now.Add(25*time.Minute + time.Nanosecond), expected: 26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesUntil(now, tt.at); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}
