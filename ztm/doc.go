// Package ztm fetches timetable data from the City of Warsaw open data API
// (api.um.warszawa.pl).
//
// It covers three endpoints:
//   - dbtimetable_get (timetable): scheduled departures of one line at a stop pole
//   - dbtimetable_get (lines): lines serving a stop pole
//   - dbstore_get (stop info): stop names and positions, cached in memory
//
// The client converts the API's key/value rows into departures.RawDeparture values and
// leaves all time logic to the departures package. Timeouts, transport failures and 5xx
// responses are retried with a linear backoff; anything else is reported as
// ErrUpstreamUnavailable.
//
// ValidateBoard reproduces the checks a setup flow runs before accepting a new
// stop/pole/line board and reports failures as *ValidationError codes.
package ztm
