package types

import (
	"bytes"
	"encoding/json"
	"strings"
)

// NullableString tracks whether a string field was present in a JSON patch.
// Present with null clears the column, absent leaves it untouched.
type NullableString struct {
	Valid bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed string
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	parsed = strings.TrimSpace(parsed)
	n.Valid = true
	if parsed == "" {
		n.Value = nil
		return nil
	}
	n.Value = &parsed
	return nil
}
