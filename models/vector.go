package models

import (
	"encoding/json"
	"fmt"
)

// EncodeVector renders an embedding in the pgvector-style text form
// "[0.1,0.2,...]" used wherever a vector crosses a textual boundary
// (the sqlite embedding column, debug output).
func EncodeVector(v []float32) string {
	if len(v) == 0 {
		return "[]"
	}
	out := "["
	for i, f := range v {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%g", f)
	}
	return out + "]"
}

// ParseVector is the inverse of EncodeVector. An empty or "[]" input yields nil.
func ParseVector(s string) ([]float32, error) {
	if s == "" || s == "[]" {
		return nil, nil
	}
	var floats []float32
	if err := json.Unmarshal([]byte(s), &floats); err != nil {
		return nil, fmt.Errorf("malformed vector text: %w", err)
	}
	return floats, nil
}
