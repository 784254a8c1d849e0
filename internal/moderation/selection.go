package moderation

import "sort"

// Selection is the set of queue item ids checked for a bulk action. It only
// ever holds ids from the currently displayed page: Prune drops everything
// else when the page changes.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Count() int { return len(s.ids) }

func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Prune keeps only ids still visible on the current page.
func (s *Selection) Prune(visible []string) {
	keep := make(map[string]struct{}, len(visible))
	for _, id := range visible {
		if _, ok := s.ids[id]; ok {
			keep[id] = struct{}{}
		}
	}
	s.ids = keep
}
