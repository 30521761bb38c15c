package models

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a field that was absent from a JSON body from one
// that was explicitly set to null. The zero value means "absent"; combine it
// with the `omitzero` tag to leave absent fields out when encoding.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns an Optional that encodes as an explicit JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// OptionalFromPtr maps nil to an explicit null.
func OptionalFromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Null[T]()
	}
	return Some(*p)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Valid = false
		o.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero reports whether the field was absent.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

// Ptr returns a copy of the value, or nil when unset or null.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
