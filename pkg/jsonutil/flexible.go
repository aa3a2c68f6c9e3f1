// Package jsonutil tolerates the loosely typed JSON language models
// return, where a field documented as a string may come back as a
// number, boolean, or null.
package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleString converts a json.RawMessage to a string regardless of
// the underlying JSON type. Null and empty values become "".
func FlexibleString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b)
	}

	return string(raw)
}
