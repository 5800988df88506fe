package departures

import (
	"sort"
	"strconv"
	"time"
)

type resolved struct {
	raw RawDeparture
	at  time.Time
}

// Select returns up to k departures from records that have not yet left at now.
//
// Records whose time cannot be parsed are dropped and counted in Skipped. When nothing
// remains the result is empty, carries NoScheduleNote and displays the ceiling label.
// k below 1 is treated as 1.
func Select(records []RawDeparture, now time.Time, k int, opts Options) SelectionResult {
	opts = opts.Normalized()
	if k < 1 {
		k = 1
	}

	serviceDay := ServiceDayStart(now)
	upcoming := make([]resolved, 0, len(records))
	skipped := 0
	for _, r := range records {
		at, err := ResolveServiceDayTime(r.ScheduledTime, serviceDay)
		if err != nil {
			skipped++
			continue
		}
		if at.Before(now) {
			continue
		}
		upcoming = append(upcoming, resolved{raw: r, at: at})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].at.Before(upcoming[j].at)
	})
	if len(upcoming) > k {
		upcoming = upcoming[:k]
	}

	res := SelectionResult{Skipped: skipped}
	if len(upcoming) == 0 {
		res.Departures = []Departure{}
		res.Note = NoScheduleNote
		res.Display = opts.CeilingLabel
		return res
	}

	res.Departures = make([]Departure, 0, len(upcoming))
	for _, u := range upcoming {
		mins := MinutesUntil(now, u.at)
		res.Departures = append(res.Departures, Departure{
			Line:          u.raw.Line,
			Direction:     u.raw.Direction,
			ScheduledTime: u.raw.ScheduledTime,
			Timestamp:     u.at,
			MinutesUntil:  mins,
			Display:       opts.Label(mins),
			NightService:  IsNightContinuation(u.raw.ScheduledTime),
			Brigade:       u.raw.Brigade,
			Route:         u.raw.Route,
		})
	}
	res.Display = res.Departures[0].Display
	return res
}

// MinutesUntil rounds the wait up to whole minutes, so a departure 10 seconds away
// shows as 1 min. Past instants yield 0.
func MinutesUntil(now, at time.Time) int {
	d := at.Sub(now)
	if d <= 0 {
		return 0
	}
	mins := int(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}

// Label renders minutes, clamping at the ceiling.
func (o Options) Label(minutes int) string {
	o = o.Normalized()
	if minutes >= o.CeilingMinutes {
		return o.CeilingLabel
	}
	return strconv.Itoa(minutes) + " min"
}
