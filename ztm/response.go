package ztm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// keyValue is one cell of an API row.
type keyValue struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// valuesRow is the wrapped row shape used by the lines and stop info endpoints.
type valuesRow struct {
	Values []keyValue `json:"values"`
}

// decodeResult splits a "result" member into list items or a string message.
// A null result is ErrEmptyResult and "false" is ErrInvalidAPIKey.
func decodeResult(raw json.RawMessage) ([]json.RawMessage, string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, "", ErrEmptyResult
	}
	switch trimmed[0] {
	case '"':
		var msg string
		if err := json.Unmarshal(trimmed, &msg); err != nil {
			return nil, "", fmt.Errorf("%w: undecodable result string", ErrUpstreamUnavailable)
		}
		if msg == "false" {
			return nil, "", ErrInvalidAPIKey
		}
		if msg == "" {
			msg = "empty message"
		}
		return nil, msg, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, "", fmt.Errorf("%w: undecodable result list", ErrUpstreamUnavailable)
		}
		return items, "", nil
	default:
		return nil, "", fmt.Errorf("%w: unexpected result type", ErrUpstreamUnavailable)
	}
}

// cells flattens key/value pairs into a map. Later keys win.
func cells(kvs []keyValue) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = stringValue(kv.Value)
	}
	return out
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
