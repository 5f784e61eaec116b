package entity

import (
	"bytes"
	"encoding/json"
)

// identified is implemented by entities the backend may embed in place of an id.
type identified interface {
	RefID() string
}

// Ref is a reference the backend sends either as a bare id string or as the embedded object.
type Ref[T any] struct {
	ID    string
	Value *T
}

// RefTo builds a resolved reference from an embedded value.
func RefTo[T any](id string, v T) Ref[T] {
	return Ref[T]{ID: id, Value: &v}
}

// Resolved reports whether the embedded object is present.
func (r Ref[T]) Resolved() bool {
	return r.Value != nil
}

// IsZero reports whether the reference points at nothing.
func (r Ref[T]) IsZero() bool {
	return r.ID == "" && r.Value == nil
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(r.Value)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Ref[T]{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Value = &v
	if id, ok := any(&v).(identified); ok {
		r.ID = id.RefID()
	}
	return nil
}
