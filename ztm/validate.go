package ztm

import (
	"context"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/theoremus-urban-solutions/ztm-departures/config"
	"github.com/theoremus-urban-solutions/ztm-departures/departures"
)

// Validation error codes reported by ValidateBoard.
const (
	CodeInvalidStopNumber  = "invalid_stop_number"
	CodeAPIHTTPError       = "api_http_error"
	CodeInvalidAPIKey      = "invalid_api_key"
	CodeLineCheckFailed    = "line_check_failed"
	CodeLineNotFound       = "line_not_found"
	CodeNoDepartures       = "no_departures"
	CodeNoValidTimes       = "no_valid_times"
	CodeAPIConnectionError = "api_connection_error"
	CodeUnknown            = "unknown"
)

// ValidationError rejects a board during setup.
type ValidationError struct {
	Code string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	validTime = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
	validate  = validator.New()
)

// ValidateBoard checks that the line serves the stop pole and has at least one
// well-formed departure time today.
func (c *Client) ValidateBoard(ctx context.Context, b config.Board) error {
	if err := validate.Var(b.StopNr, "required,len=2,numeric"); err != nil {
		return &ValidationError{Code: CodeInvalidStopNumber, Err: err}
	}

	lines, err := c.Lines(ctx, b.StopID, b.StopNr)
	if err != nil {
		if errors.Is(err, ErrEmptyResult) {
			return &ValidationError{Code: CodeLineCheckFailed, Err: err}
		}
		return classify(err)
	}
	found := false
	for _, l := range lines {
		if l == b.Line {
			found = true
			break
		}
	}
	if !found {
		return &ValidationError{Code: CodeLineNotFound}
	}

	records, err := c.Timetable(ctx, b.StopID, b.StopNr, b.Line)
	if err != nil {
		if errors.Is(err, departures.ErrNoDeparturesToday) {
			return &ValidationError{Code: CodeNoDepartures, Err: err}
		}
		return classify(err)
	}
	for _, r := range records {
		if validTime.MatchString(r.ScheduledTime) {
			return nil
		}
	}
	return &ValidationError{Code: CodeNoValidTimes}
}

func classify(err error) *ValidationError {
	var status *StatusError
	switch {
	case errors.Is(err, ErrInvalidAPIKey):
		return &ValidationError{Code: CodeInvalidAPIKey, Err: err}
	case errors.As(err, &status):
		return &ValidationError{Code: CodeAPIHTTPError, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), isUpstream(err):
		return &ValidationError{Code: CodeAPIConnectionError, Err: err}
	default:
		return &ValidationError{Code: CodeUnknown, Err: err}
	}
}
