package departures

import "time"

// RawDeparture is one upstream timetable record for a stop, pole and line.
type RawDeparture struct {
	Line          string `json:"line"`
	ScheduledTime string `json:"scheduled_time"`
	Direction     string `json:"direction"`
	Brigade       string `json:"brigade,omitempty"`
	Route         string `json:"route,omitempty"`
	Symbol1       string `json:"symbol_1,omitempty"`
	Symbol2       string `json:"symbol_2,omitempty"`
}

// ServiceDayTime is a scheduled time expressed against the service day it belongs to.
type ServiceDayTime struct {
	ServiceDate time.Time
	// Minutes since the service day's midnight; exceeds 1440 for night continuations.
	Minutes int
	Seconds int
}

// Departure is a selected upcoming departure.
type Departure struct {
	Line          string    `json:"line"`
	Direction     string    `json:"direction"`
	ScheduledTime string    `json:"scheduled_time"`
	Timestamp     time.Time `json:"timestamp"`
	MinutesUntil  int       `json:"minutes_until"`
	Display       string    `json:"display"`
	NightService  bool      `json:"night_service,omitempty"`
	Brigade       string    `json:"brigade,omitempty"`
	Route         string    `json:"route,omitempty"`
	Note          string    `json:"note,omitempty"`
}

// SelectionResult is the outcome of one Select call.
type SelectionResult struct {
	Departures []Departure `json:"departures"`
	// Display is the representative state: the first departure's label, or the
	// ceiling sentinel when nothing is upcoming.
	Display string `json:"display"`
	Note    string `json:"note,omitempty"`
	// Skipped counts records dropped because their time could not be parsed.
	Skipped int `json:"skipped,omitempty"`
}

// Empty reports whether no departure was selected.
func (r SelectionResult) Empty() bool { return len(r.Departures) == 0 }

// Next returns the first selected departure.
func (r SelectionResult) Next() (Departure, bool) {
	if len(r.Departures) == 0 {
		return Departure{}, false
	}
	return r.Departures[0], true
}

// Options tunes how minutes are rendered.
type Options struct {
	// CeilingMinutes is the first minute value rendered with CeilingLabel.
	CeilingMinutes int
	CeilingLabel   string
}

const (
	// NoScheduleNote is shown whenever no upcoming departure exists.
	NoScheduleNote = "No upcoming schedule available. Please verify on wtp.waw.pl or call 19115 for more information."

	DefaultCeilingMinutes = 60
	DefaultCeilingLabel   = "60+ min"
)

// DefaultOptions returns the options used by the Warsaw boards.
func DefaultOptions() Options {
	return Options{CeilingMinutes: DefaultCeilingMinutes, CeilingLabel: DefaultCeilingLabel}
}

// Normalized fills unset ceiling fields with their defaults.
func (o Options) Normalized() Options {
	if o.CeilingMinutes <= 0 {
		o.CeilingMinutes = DefaultCeilingMinutes
	}
	if o.CeilingLabel == "" {
		o.CeilingLabel = DefaultCeilingLabel
	}
	return o
}
