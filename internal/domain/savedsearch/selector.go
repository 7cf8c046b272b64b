package savedsearch

// Selector picks saved searches by owning app and, optionally, by name.
type Selector struct {
	App  string
	Name string // empty = every search in App
}

// Matches reports whether s is in scope.
func (sel Selector) Matches(s *SavedSearch) bool {
	if s.App() != sel.App {
		return false
	}
	return sel.Name == "" || s.Name() == sel.Name
}

// Filter returns the matching saved searches in their original order.
func (sel Selector) Filter(all []SavedSearch) []SavedSearch {
	out := make([]SavedSearch, 0, len(all))
	for i := range all {
		if sel.Matches(&all[i]) {
			out = append(out, all[i])
		}
	}
	return out
}
