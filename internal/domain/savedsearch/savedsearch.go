package savedsearch

import (
	"fmt"
	"maps"
)

// SavedSearch is a saved search definition as seen by the editor.
type SavedSearch struct {
	name     string
	app      string
	owner    string
	editPath string
	listPath string
	content  map[string]string
}

// New validates and creates a SavedSearch.
// Name and app are required; paths may be empty and are resolved by the repository.
func New(name, app, owner string, content map[string]string) (SavedSearch, error) {
	if name == "" {
		return SavedSearch{}, fmt.Errorf("saved search name is required")
	}
	if app == "" {
		return SavedSearch{}, fmt.Errorf("saved search %q has no owning app", name)
	}
	return SavedSearch{
		name:    name,
		app:     app,
		owner:   owner,
		content: maps.Clone(content),
	}, nil
}

// Reconstruct creates a SavedSearch without validation (remote hydration).
func Reconstruct(name, app, owner, editPath, listPath string, content map[string]string) SavedSearch {
	if content == nil {
		content = map[string]string{}
	}
	return SavedSearch{
		name:     name,
		app:      app,
		owner:    owner,
		editPath: editPath,
		listPath: listPath,
		content:  content,
	}
}

// Name returns the saved search name.
func (s *SavedSearch) Name() string { return s.name }

// App returns the owning app.
func (s *SavedSearch) App() string { return s.app }

// Owner returns the owning user.
func (s *SavedSearch) Owner() string { return s.owner }

// EditPath returns the REST path used to persist changes.
func (s *SavedSearch) EditPath() string { return s.editPath }

// ListPath returns the REST path used to reload the record.
func (s *SavedSearch) ListPath() string { return s.listPath }

// Content returns a copy of the parameter map.
func (s *SavedSearch) Content() map[string]string { return maps.Clone(s.content) }

// Param returns the value of a parameter and whether it is set.
func (s *SavedSearch) Param(name string) (string, bool) {
	v, ok := s.content[name]
	return v, ok
}

// SetParam updates a parameter in memory. Nothing is persisted.
func (s *SavedSearch) SetParam(name, value string) {
	if s.content == nil {
		s.content = map[string]string{}
	}
	s.content[name] = value
}

// String identifies the saved search in logs.
func (s *SavedSearch) String() string {
	return s.app + "/" + s.name
}
