package formatter

import (
	"encoding/json"
)

// BuildJSON serializes v to JSON. Values that cannot be encoded yield "null".
func BuildJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}
