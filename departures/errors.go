package departures

import "errors"

var (
	// ErrMalformedTime is returned for scheduled times that are not HH:MM[:SS].
	ErrMalformedTime = errors.New("malformed scheduled time")

	// ErrNoDeparturesToday signals that the line has no records at all for the
	// current service day, as opposed to records that have all departed.
	ErrNoDeparturesToday = errors.New("no departures today")
)
