package engine

import (
	"fmt"
	"reflect"
)

// Primitive names a stateful primitive's identifier namespace.
type Primitive string

const (
	PrimitiveDelay      Primitive = "delay"
	PrimitiveThrottle   Primitive = "throttle"
	PrimitiveTransition Primitive = "transition"
)

// registry maps caller identifiers to one primitive's state.
//
// Entries are inserted lazily on first access and are never removed except
// through an explicit evict. There is no size bound.
type registry[S any] struct {
	entries map[any]S
}

func newRegistry[S any]() *registry[S] {
	return &registry[S]{entries: make(map[any]S)}
}

func (r *registry[S]) lookup(id any) (S, bool) {
	s, ok := r.entries[id]
	return s, ok
}

func (r *registry[S]) store(id any, s S) {
	r.entries[id] = s
}

func (r *registry[S]) evict(id any) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

func (r *registry[S]) len() int {
	return len(r.entries)
}

// checkID rejects identifiers that cannot key a map.
// A nil identifier or a slice/map/func value would panic on insert.
func checkID(op string, id any) error {
	if id == nil {
		return invalidArgument(op, "id", id, "must not be nil")
	}
	if !reflect.TypeOf(id).Comparable() {
		return invalidArgument(op, "id", reflect.TypeOf(id), "must be a comparable type")
	}
	return nil
}

// typeMismatch describes an identifier reused with a different value type.
func typeMismatch(id, entry, value any) string {
	return fmt.Sprintf("identifier %v already holds %T, cannot accept %T", id, entry, value)
}
