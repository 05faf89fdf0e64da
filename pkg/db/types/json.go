package dbtypes

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a raw json/jsonb column. Postgres hands back []byte, sqlite hands
// back string; both scan.
type JSON []byte

func (j *JSON) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j = nil
		return nil
	case string:
		*j = append((*j)[:0], v...)
		return nil
	case []byte:
		*j = append((*j)[:0], v...)
		return nil
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
}

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("JSON: invalid document")
	}
	return string(j), nil
}

// MarshalJSON keeps the document inline instead of base64 encoding it.
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return fmt.Errorf("JSON: UnmarshalJSON on nil pointer")
	}
	*j = append((*j)[:0], data...)
	return nil
}

// IsNull reports whether the column holds no document or a literal null.
func (j JSON) IsNull() bool {
	trimmed := bytes.TrimSpace(j)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the document into dest.
func (j JSON) Decode(dest any) error {
	if j.IsNull() {
		return fmt.Errorf("JSON: empty document")
	}
	return json.Unmarshal(j, dest)
}

// MarshalJSONColumn encodes v into a JSON column value.
func MarshalJSONColumn(v any) (JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return JSON(raw), nil
}
