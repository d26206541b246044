package component

import "sync/atomic"

// ComponentID keys a component store inside a world. Zero is never issued.
type ComponentID uint32

var lastID atomic.Uint32

// ComponentKind is the typed key of one component store.
type ComponentKind[T any] struct {
	id ComponentID
}

// NewComponentKind issues a fresh kind. Kinds are process wide, so every
// world shares the same IDs.
func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(lastID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID { return k.id }

// Valid is false for the zero kind.
func (k ComponentKind[T]) Valid() bool { return k.id != 0 }

// ComponentHandle is declared once per component type at package level.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
}

func NewComponent[T any]() ComponentHandle[T] {
	return ComponentHandle[T]{kind: NewComponentKind[T]()}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] { return h.kind }
