package utils

import (
	"fmt"
	"time"
)

// Iso8601 returns t in RFC3339 format, keeping t's zone offset
func Iso8601(t time.Time) string {
	return t.Format(time.RFC3339)
}

// Iso8601Extended returns timestamp with nanosecond precision and timezone
func Iso8601Extended(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000000-07:00")
}

// Iso8601Date returns just the date portion in YYYY-MM-DD format
func Iso8601Date(t time.Time) string {
	return t.Format("2006-01-02")
}

// GTFSDate returns the date in GTFS YYYYMMDD format
func GTFSDate(t time.Time) string {
	return t.Format("20060102")
}

// GTFSClock formats minutes since service-day midnight as HH:MM:SS. Hours may exceed 23.
func GTFSClock(minutes, seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", minutes/60, minutes%60, seconds)
}
