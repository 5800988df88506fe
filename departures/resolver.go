package departures

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// ServiceDayStartHour is the first wall-clock hour owned by the current service day.
	// Hours 0..4 continue the previous one.
	ServiceDayStartHour = 5

	// maxServiceHour bounds the raw hour field; anything above is rejected.
	maxServiceHour = 47

	minutesPerDay = 24 * 60
)

// ServiceDayStart returns midnight of the calendar date the service day containing now
// started on. Before 05:00 that is the previous date.
func ServiceDayStart(now time.Time) time.Time {
	y, m, d := now.Date()
	if now.Hour() < ServiceDayStartHour {
		d--
	}
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// ParseServiceDayTime interprets raw ("HH:MM" or "HH:MM:SS") against serviceDate.
// Raw hours 0..4 are shifted by +24h so they order after the evening of the same
// service day.
func ParseServiceDayTime(raw string, serviceDate time.Time) (ServiceDayTime, error) {
	h, m, s, err := splitClock(raw)
	if err != nil {
		return ServiceDayTime{}, err
	}
	if h < ServiceDayStartHour {
		h += 24
	}
	y, mo, d := serviceDate.Date()
	return ServiceDayTime{
		ServiceDate: time.Date(y, mo, d, 0, 0, 0, 0, serviceDate.Location()),
		Minutes:     h*60 + m,
		Seconds:     s,
	}, nil
}

// Time resolves the service day time to an absolute wall-clock timestamp in the
// service date's location.
func (t ServiceDayTime) Time() time.Time {
	days := t.Minutes / minutesPerDay
	rem := t.Minutes % minutesPerDay
	y, m, d := t.ServiceDate.Date()
	return time.Date(y, m, d+days, rem/60, rem%60, t.Seconds, 0, t.ServiceDate.Location())
}

// ResolveServiceDayTime converts raw to an absolute timestamp for the service day that
// started on serviceDayStart's date:
//
//	00..04 -> next calendar day, hour unchanged
//	05..23 -> serviceDayStart's date
//	24..47 -> next calendar day, hour-24
//
// so "26:15" and "02:15" resolve to the same instant.
func ResolveServiceDayTime(raw string, serviceDayStart time.Time) (time.Time, error) {
	sdt, err := ParseServiceDayTime(raw, serviceDayStart)
	if err != nil {
		return time.Time{}, err
	}
	return sdt.Time(), nil
}

// IsNightContinuation reports whether raw uses the past-midnight notation (hour >= 24).
func IsNightContinuation(raw string) bool {
	h, _, _, err := splitClock(raw)
	return err == nil && h >= 24
}

func splitClock(raw string) (h, m, s int, err error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, raw)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, ok := clockField(p)
		if !ok {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrMalformedTime, raw)
		}
		vals[i] = v
	}
	h, m, s = vals[0], vals[1], vals[2]
	if h > maxServiceHour || m > 59 || s > 59 {
		return 0, 0, 0, fmt.Errorf("%w: %q out of range", ErrMalformedTime, raw)
	}
	return h, m, s, nil
}

func clockField(p string) (int, bool) {
	if len(p) == 0 || len(p) > 2 {
		return 0, false
	}
	for _, c := range p {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	v, err := strconv.Atoi(p)
	return v, err == nil
}
