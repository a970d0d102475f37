package kpi

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encoding is one entry of the encoding map. Field is nil when the role
// exists on the marks card but has nothing placed on it.
type Encoding struct {
	ID    string
	Field *FieldRef
}

// EncodingMap lists role id -> field in the order the host reported
// them. Order matters: fallbacks pick the first matching entry.
type EncodingMap []Encoding

// Get returns the field placed on role id, or nil.
func (m EncodingMap) Get(id string) *FieldRef {
	for _, e := range m {
		if e.ID == id {
			return e.Field
		}
	}
	return nil
}

// With returns a copy of m with id set to field, replacing an existing
// entry in place or appending a new one.
func (m EncodingMap) With(id string, field *FieldRef) EncodingMap {
	out := make(EncodingMap, 0, len(m)+1)
	replaced := false
	for _, e := range m {
		if e.ID == id {
			e.Field = field
			replaced = true
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, Encoding{ID: id, Field: field})
	}
	return out
}

// MarshalJSON writes the map as a JSON object, preserving entry order.
func (m EncodingMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order. null values
// become entries with a nil Field.
func (m *EncodingMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("encoding map: expected object, got %v", tok)
	}

	var out EncodingMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("encoding map: expected key, got %v", tok)
		}
		var field *FieldRef
		if err := dec.Decode(&field); err != nil {
			return fmt.Errorf("encoding map: role %q: %w", id, err)
		}
		out = append(out, Encoding{ID: id, Field: field})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
