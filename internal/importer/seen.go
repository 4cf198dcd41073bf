package importer

import "container/list"

// seenSet remembers the student ids already read in one run. When bounded,
// the oldest id is forgotten first, so a duplicate further apart than the
// limit is passed through to the sink, which upserts it.
type seenSet struct {
	limit int
	ids   map[string]*list.Element
	order *list.List
}

func newSeenSet(limit int) *seenSet {
	return &seenSet{
		limit: limit,
		ids:   make(map[string]*list.Element),
		order: list.New(),
	}
}

// SeenAndRecord reports whether id was already recorded and records it if not.
func (s *seenSet) SeenAndRecord(id string) bool {
	if _, ok := s.ids[id]; ok {
		return true
	}
	if s.limit > 0 && s.order.Len() >= s.limit {
		oldest := s.order.Front()
		delete(s.ids, oldest.Value.(string))
		s.order.Remove(oldest)
	}
	s.ids[id] = s.order.PushBack(id)
	return false
}

// Len returns the number of remembered ids.
func (s *seenSet) Len() int { return s.order.Len() }
