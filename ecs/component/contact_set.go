package component

// ContactKey identifies one fixture of one entity.
type ContactKey struct {
	Entity  uint64
	Fixture int
}

// ContactSet reference-counts overlapping fixtures. A fixture that
// begins twice must end twice before it leaves the set.
type ContactSet struct {
	counts map[ContactKey]int
	total  int
}

// Begin records a contact and reports whether the set went from empty
// to non-empty.
func (s *ContactSet) Begin(k ContactKey) bool {
	if s.counts == nil {
		s.counts = make(map[ContactKey]int)
	}
	s.counts[k]++
	s.total++
	return s.total == 1
}

// End releases a contact. Unmatched ends are ignored and reported with
// ok=false. last is true when the set became empty.
func (s *ContactSet) End(k ContactKey) (last bool, ok bool) {
	n := s.counts[k]
	if n == 0 {
		return false, false
	}
	if n == 1 {
		delete(s.counts, k)
	} else {
		s.counts[k] = n - 1
	}
	s.total--
	return s.total == 0, true
}

func (s *ContactSet) Len() int {
	return s.total
}

func (s *ContactSet) Contains(k ContactKey) bool {
	return s.counts[k] > 0
}

func (s *ContactSet) Clear() {
	s.counts = nil
	s.total = 0
}
