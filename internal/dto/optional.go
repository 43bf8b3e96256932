package dto

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from an explicit null. Set is
// true whenever the field appeared; Value is nil for null. Use it with the
// omitzero tag option so an unset value is left out when encoding.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a set Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsZero reports an unset Optional, for omitzero.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}
