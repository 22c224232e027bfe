package models

import (
	"bytes"
	"encoding/json"
)

// Field is a JSON value that remembers whether it was present in the payload.
// A present null leaves Value nil with Set true.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// ApplyTo copies the value into dst when the field was present.
func (f Field[T]) ApplyTo(dst **T) {
	if f.Set {
		*dst = f.Value
	}
}

// Present returns a Field holding v.
func Present[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// HasValue reports whether the field was present with a non-null value.
func (f Field[T]) HasValue() bool {
	return f.Set && f.Value != nil
}
