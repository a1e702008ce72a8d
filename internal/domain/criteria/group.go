package criteria

import (
	"bytes"
	"encoding/json"
)

// Group is a criteria group a lender either configured or left absent.
// An absent group is never evaluated and contributes nothing to the match.
type Group[T any] struct {
	Value T
	Set   bool
}

func Configured[T any](v T) Group[T] {
	return Group[T]{Value: v, Set: true}
}

func Absent[T any]() Group[T] {
	return Group[T]{}
}

func (g Group[T]) Get() (T, bool) {
	return g.Value, g.Set
}

func (g Group[T]) MarshalJSON() ([]byte, error) {
	if !g.Set {
		return []byte("null"), nil
	}
	return json.Marshal(g.Value)
}

func (g *Group[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		g.Value, g.Set = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &g.Value); err != nil {
		return err
	}
	g.Set = true
	return nil
}
