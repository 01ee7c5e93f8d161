package dto

import (
	"bytes"
	"encoding/json"

	"github.com/blackenaxe/icom/internal/service"
)

// Optional distinguishes a JSON field that was omitted from one sent as null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON is only invoked for fields present in the document.
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

// Field converts to the service patch representation.
func (o Optional[T]) Field() service.Field[T] {
	return service.Field[T]{Set: o.Set, Value: o.Value}
}
