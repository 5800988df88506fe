// Package formatter renders board views in the supported output formats.
//
// This package is organized into:
// - json.go: JSON serialization
// - siri.go: SIRI Estimated Timetable deliveries and the response envelope
// - gtfsrt.go: GTFS-Realtime TripUpdates feeds
// - table.go: plain text tables for terminals
//
// Every builder takes board.View values, so one selection can be rendered in any format
// without touching the board again.
package formatter
