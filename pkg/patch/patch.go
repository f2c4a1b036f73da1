// Package patch provides presence-aware fields for partial updates.
//
// A Field decoded from JSON records whether the key appeared in the body, so
// an explicit empty value ("", [], 0) is distinguishable from an omitted key.
package patch

import (
	"bytes"
	"encoding/json"
)

type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Of returns a set field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Apply overwrites *dst when the field was supplied.
func (f Field[T]) Apply(dst *T) {
	if f.Set {
		*dst = f.Value
	}
}

// Or returns the supplied value, or fallback when the key was omitted.
func (f Field[T]) Or(fallback T) T {
	if f.Set {
		return f.Value
	}
	return fallback
}
