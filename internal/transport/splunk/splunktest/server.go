// Package splunktest provides an in-memory Splunk management endpoint for tests.
//
// It implements the subset of the REST API used by ssbulk: auth/login and the
// saved/searches collection (list, get, edit), all with output_mode=json.
package splunktest

import (
	"encoding/json"
	"maps"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Default credentials accepted by the fake.
const (
	Username   = "admin"
	Password   = "changeme"
	SessionKey = "test-session-key"
)

// SavedSearch is a stored saved search.
type SavedSearch struct {
	Name    string
	App     string
	Owner   string
	Content map[string]string
}

// Request is a recorded call.
type Request struct {
	Method string
	Path   string
	Form   url.Values
}

// Server is a fake Splunk management endpoint served over TLS.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	searches []SavedSearch
	requests []Request
	failEdit map[string]int
}

// NewServer starts a server holding searches. It is closed on test cleanup.
func NewServer(t testing.TB, searches ...SavedSearch) *Server {
	t.Helper()

	s := &Server{failEdit: map[string]int{}}
	for _, ss := range searches {
		ss.Content = maps.Clone(ss.Content)
		if ss.Content == nil {
			ss.Content = map[string]string{}
		}
		s.searches = append(s.searches, ss)
	}

	r := chi.NewRouter()
	r.Post("/services/auth/login", s.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/servicesNS/{owner}/{app}/saved/searches", s.handleList)
		r.Get("/servicesNS/{owner}/{app}/saved/searches/{name}", s.handleGet)
		r.Post("/servicesNS/{owner}/{app}/saved/searches/{name}", s.handleEdit)
	})

	s.Server = httptest.NewTLSServer(s.record(r))
	t.Cleanup(s.Close)
	return s
}

// Host returns the listener host.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.Listener.Addr().String())
	return host
}

// Port returns the listener port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.Listener.Addr().String())
	p, _ := strconv.Atoi(port)
	return p
}

// Get returns the stored saved search.
func (s *Server) Get(app, name string) (SavedSearch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ss := range s.searches {
		if ss.App == app && ss.Name == name {
			ss.Content = maps.Clone(ss.Content)
			return ss, true
		}
	}
	return SavedSearch{}, false
}

// Requests returns the recorded calls in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// FailEdit makes every edit of the named saved search fail with status.
func (s *Server) FailEdit(name string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEdit[name] = status
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form := url.Values{}
		if r.Method == http.MethodPost {
			form = maps.Clone(r.PostForm)
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Form: form})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Splunk "+SessionKey {
			writeMessages(w, http.StatusUnauthorized, "call not properly authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.PostForm.Get("username") != Username || r.PostForm.Get("password") != Password {
		writeMessages(w, http.StatusUnauthorized, "Login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sessionKey": SessionKey})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	app := chi.URLParam(r, "app")

	s.mu.Lock()
	entries := make([]entry, 0, len(s.searches))
	for _, ss := range s.searches {
		if app == "-" || app == ss.App {
			entries = append(entries, toEntry(ss))
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, feed{Entry: entries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.find(r)
	if i < 0 {
		s.mu.Unlock()
		writeMessages(w, http.StatusNotFound, "Could not find object id="+urlParam(r, "name"))
		return
	}
	e := toEntry(s.searches[i])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, feed{Entry: []entry{e}})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	i := s.find(r)
	if i < 0 {
		s.mu.Unlock()
		writeMessages(w, http.StatusNotFound, "Could not find object id="+urlParam(r, "name"))
		return
	}
	if status, ok := s.failEdit[s.searches[i].Name]; ok {
		s.mu.Unlock()
		writeMessages(w, status, "edit rejected")
		return
	}
	for k, v := range r.PostForm {
		if k == "output_mode" || len(v) == 0 {
			continue
		}
		s.searches[i].Content[k] = v[len(v)-1]
	}
	e := toEntry(s.searches[i])
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, feed{Entry: []entry{e}})
}

// find locates the saved search addressed by the path. Caller holds mu.
func (s *Server) find(r *http.Request) int {
	owner, app, name := urlParam(r, "owner"), urlParam(r, "app"), urlParam(r, "name")
	for i, ss := range s.searches {
		if ss.Name == name && (app == "-" || ss.App == app) && (owner == "-" || ss.Owner == owner) {
			return i
		}
	}
	return -1
}

func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

type entry struct {
	Name    string            `json:"name"`
	ID      string            `json:"id"`
	Author  string            `json:"author"`
	ACL     map[string]any    `json:"acl"`
	Links   map[string]string `json:"links"`
	Content map[string]any    `json:"content"`
}

type feed struct {
	Entry  []entry        `json:"entry"`
	Paging map[string]int `json:"paging"`
}

func toEntry(ss SavedSearch) entry {
	path := "/servicesNS/" + url.PathEscape(ss.Owner) + "/" + url.PathEscape(ss.App) +
		"/saved/searches/" + url.PathEscape(ss.Name)

	content := make(map[string]any, len(ss.Content)+1)
	for k, v := range ss.Content {
		content[k] = v
	}
	// the REST API returns typed values for some settings
	if _, ok := content["is_scheduled"]; !ok {
		content["is_scheduled"] = false
	}

	return entry{
		Name:   ss.Name,
		ID:     "https://127.0.0.1:8089" + path,
		Author: ss.Owner,
		ACL: map[string]any{
			"app":       ss.App,
			"owner":     ss.Owner,
			"sharing":   "app",
			"can_write": true,
		},
		Links: map[string]string{
			"alternate": path,
			"list":      path,
			"edit":      path,
			"remove":    path,
		},
		Content: content,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessages(w http.ResponseWriter, status int, text string) {
	writeJSON(w, status, map[string]any{
		"messages": []map[string]string{{"type": "ERROR", "text": text}},
	})
}
