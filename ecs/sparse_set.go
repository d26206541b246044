package ecs

// store is the type-erased view of a SparseSet the World needs for
// bulk cleanup when an entity is destroyed.
type store interface {
	has(id entityID) bool
	remove(id entityID) bool
	clear()
}

// SparseSet keeps components densely packed and indexed by entity id.
type SparseSet[T any] struct {
	dense  []entityID
	owners []Entity
	values []*T
	sparse []int
}

func newSparseSet[T any]() *SparseSet[T] {
	return &SparseSet[T]{}
}

func (s *SparseSet[T]) has(id entityID) bool {
	if s == nil || id == 0 || int(id) > len(s.sparse) {
		return false
	}
	idx := s.sparse[id-1]
	return idx >= 0 && idx < len(s.dense) && s.dense[idx] == id
}

func (s *SparseSet[T]) get(id entityID) (*T, bool) {
	if !s.has(id) {
		return nil, false
	}
	return s.values[s.sparse[id-1]], true
}

func (s *SparseSet[T]) set(e Entity, v *T) {
	id := e.id()
	for int(id) > len(s.sparse) {
		s.sparse = append(s.sparse, -1)
	}
	if s.has(id) {
		idx := s.sparse[id-1]
		s.values[idx] = v
		s.owners[idx] = e
		return
	}
	s.dense = append(s.dense, id)
	s.owners = append(s.owners, e)
	s.values = append(s.values, v)
	s.sparse[id-1] = len(s.dense) - 1
}

func (s *SparseSet[T]) remove(id entityID) bool {
	if !s.has(id) {
		return false
	}
	idx := s.sparse[id-1]
	last := len(s.dense) - 1
	lastID := s.dense[last]

	s.dense[idx] = s.dense[last]
	s.owners[idx] = s.owners[last]
	s.values[idx] = s.values[last]
	s.sparse[lastID-1] = idx

	s.dense = s.dense[:last]
	s.owners = s.owners[:last]
	s.values[last] = nil
	s.values = s.values[:last]
	s.sparse[id-1] = -1
	return true
}

func (s *SparseSet[T]) clear() {
	s.dense = nil
	s.owners = nil
	s.values = nil
	s.sparse = nil
}

func (s *SparseSet[T]) len() int {
	if s == nil {
		return 0
	}
	return len(s.dense)
}

// snapshot copies the owner list so callbacks may add or remove
// components while iterating.
func (s *SparseSet[T]) snapshot() []Entity {
	if s == nil || len(s.owners) == 0 {
		return nil
	}
	return append([]Entity(nil), s.owners...)
}
