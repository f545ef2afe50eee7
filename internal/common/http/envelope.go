package http

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the wrapper every backend response uses.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HasData reports whether the envelope carries a non-null data payload.
func (e *Envelope) HasData() bool {
	if e == nil {
		return false
	}
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals the data payload into out.
func (e *Envelope) Decode(out interface{}) error {
	if !e.HasData() {
		return fmt.Errorf("envelope has no data")
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("decode envelope data: %w", err)
	}
	return nil
}
