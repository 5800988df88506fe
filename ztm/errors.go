package ztm

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable wraps every fetch failure: transport errors, timeouts,
	// non-200 responses and malformed payloads.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidAPIKey is returned when the API answers with result "false".
	ErrInvalidAPIKey = errors.New("invalid api key")

	// ErrEmptyResult is returned when the API answers with a null result.
	ErrEmptyResult = errors.New("empty result")

	// ErrStopNotFound is returned when stop info has no entry for the stop group.
	ErrStopNotFound = errors.New("stop not found")
)

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error { return ErrUpstreamUnavailable }
