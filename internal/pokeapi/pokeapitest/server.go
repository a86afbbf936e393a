// Package pokeapitest serves a small in-memory PokeAPI for tests.
package pokeapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Entry is a creature served by the fake API.
type Entry struct {
	ID             int
	Name           string
	BaseExperience int
	Types          []string
}

// Server is a fake PokeAPI backed by a fixed set of entries.
type Server struct {
	*httptest.Server

	entries []Entry

	mu         sync.Mutex
	failDetail map[string]int
	failPaths  map[string]int
	hits       map[string]int
}

// NewServer starts a fake API and registers cleanup on t.
func NewServer(t testing.TB, entries []Entry) *Server {
	t.Helper()
	s := &Server{
		entries:    entries,
		failDetail: make(map[string]int),
		failPaths:  make(map[string]int),
		hits:       make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to a Gateway.
func (s *Server) BaseURL() string {
	return s.URL + "/api/v2"
}

// FailDetail makes /pokemon/{key} respond with status.
func (s *Server) FailDetail(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDetail[key] = status
}

// FailPath makes any request whose path equals path respond with status.
func (s *Server) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPaths["/api/v2"+path] = status
}

// Hits reports how many requests reached path (relative to the API root).
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits["/api/v2"+path]
}

// DetailHits counts detail requests across all keys.
func (s *Server) DetailHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for path, n := range s.hits {
		if strings.HasPrefix(path, "/api/v2/pokemon/") {
			total += n
		}
	}
	return total
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failed := s.failPaths[r.URL.Path]
	s.mu.Unlock()
	if failed {
		http.Error(w, "injected failure", status)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/v2")
	switch {
	case path == "/pokemon":
		s.serveList(w, r)
	case strings.HasPrefix(path, "/pokemon/"):
		s.serveDetail(w, strings.Trim(strings.TrimPrefix(path, "/pokemon/"), "/"))
	case path == "/type":
		s.serveTypes(w)
	case strings.HasPrefix(path, "/type/"):
		s.serveType(w, r, strings.Trim(strings.TrimPrefix(path, "/type/"), "/"))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) resourceURL(kind string, id int) string {
	return fmt.Sprintf("%s/%s/%d/", s.BaseURL(), kind, id)
}

func (s *Server) serveList(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if end > len(s.entries) {
		end = len(s.entries)
	}
	results := []map[string]string{}
	for i := offset; i < end; i++ {
		e := s.entries[i]
		results = append(results, map[string]string{"name": e.Name, "url": s.resourceURL("pokemon", e.ID)})
	}
	writeJSON(w, map[string]any{
		"count":    len(s.entries),
		"next":     nil,
		"previous": nil,
		"results":  results,
	})
}

func (s *Server) serveDetail(w http.ResponseWriter, key string) {
	s.mu.Lock()
	status, failed := s.failDetail[key]
	s.mu.Unlock()
	if failed {
		http.Error(w, "injected failure", status)
		return
	}
	for _, e := range s.entries {
		if strconv.Itoa(e.ID) != key && e.Name != key {
			continue
		}
		types := make([]map[string]any, 0, len(e.Types))
		for i, name := range e.Types {
			types = append(types, map[string]any{
				"slot": i + 1,
				"type": map[string]string{"name": name, "url": s.BaseURL() + "/type/" + name + "/"},
			})
		}
		writeJSON(w, map[string]any{
			"id":              e.ID,
			"name":            e.Name,
			"base_experience": e.BaseExperience,
			"height":          7,
			"weight":          69,
			"types":           types,
			"stats": []map[string]any{
				{"base_stat": 45, "effort": 0, "stat": map[string]string{"name": "hp", "url": ""}},
			},
		})
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

func (s *Server) categories() []string {
	seen := map[string]bool{}
	var names []string
	for _, e := range s.entries {
		for _, t := range e.Types {
			if !seen[t] {
				seen[t] = true
				names = append(names, t)
			}
		}
	}
	return names
}

func (s *Server) serveTypes(w http.ResponseWriter) {
	names := s.categories()
	results := make([]map[string]string, 0, len(names))
	for _, name := range names {
		results = append(results, map[string]string{"name": name, "url": s.BaseURL() + "/type/" + name + "/"})
	}
	writeJSON(w, map[string]any{"count": len(results), "results": results})
}

func (s *Server) serveType(w http.ResponseWriter, r *http.Request, name string) {
	members := []map[string]any{}
	found := false
	for _, category := range s.categories() {
		if category == name {
			found = true
		}
	}
	if !found {
		http.NotFound(w, r)
		return
	}
	for _, e := range s.entries {
		for slot, t := range e.Types {
			if t == name {
				members = append(members, map[string]any{
					"pokemon": map[string]string{"name": e.Name, "url": s.resourceURL("pokemon", e.ID)},
					"slot":    slot + 1,
				})
			}
		}
	}
	writeJSON(w, map[string]any{"name": name, "pokemon": members})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// Sample returns a handful of well-known entries.
func Sample() []Entry {
	return []Entry{
		{ID: 1, Name: "bulbasaur", BaseExperience: 64, Types: []string{"grass", "poison"}},
		{ID: 4, Name: "charmander", BaseExperience: 62, Types: []string{"fire"}},
		{ID: 7, Name: "squirtle", BaseExperience: 63, Types: []string{"water"}},
		{ID: 25, Name: "pikachu", BaseExperience: 112, Types: []string{"electric"}},
		{ID: 133, Name: "eevee", BaseExperience: 65, Types: []string{"normal"}},
		{ID: 6, Name: "charizard", BaseExperience: 267, Types: []string{"fire", "flying"}},
		{ID: 43, Name: "oddish", BaseExperience: 64, Types: []string{"grass", "poison"}},
	}
}
