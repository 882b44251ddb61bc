// Package testutil provides a mock Rick and Morty API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/character-gallery/pkg/rickmorty"
)

// APIPrefix is the path prefix the mock serves, mirroring the real API.
const APIPrefix = "/api"

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockAPI is a configurable mock API server.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	queries  map[string][]url.Values

	requestCount     int
	conditionalCount int
}

// NewMockAPI starts a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
		queries:  make(map[string][]url.Values),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.queries[r.URL.Path] = append(mock.queries[r.URL.Path], r.URL.Query())
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.conditionalCount++
		}
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		writeNothingHere(w)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the API root to configure clients with.
func (m *MockAPI) BaseURL() string {
	return m.server.URL + APIPrefix
}

// EpisodeURL returns the absolute URL of an episode on the mock.
func (m *MockAPI) EpisodeURL(id int) string {
	return fmt.Sprintf("%s/episode/%d", m.BaseURL(), id)
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.queries = make(map[string][]url.Values)
}

// SetHandler sets a custom handler for a path (including APIPrefix).
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCharacters serves chars from /api/character. The name parameter
// filters case-insensitively by substring; no match answers 404 like the
// real API. Every request gets the full filtered list as one page.
func (m *MockAPI) SetCharacters(chars []rickmorty.Character) {
	m.SetHandler(APIPrefix+"/character", func(w http.ResponseWriter, r *http.Request) {
		name := strings.ToLower(r.URL.Query().Get("name"))

		results := make([]rickmorty.Character, 0, len(chars))
		for _, c := range chars {
			if name == "" || strings.Contains(strings.ToLower(c.Name), name) {
				results = append(results, c)
			}
		}
		if len(results) == 0 {
			writeNothingHere(w)
			return
		}

		writeJSON(w, http.StatusOK, rickmorty.CharacterPage{
			Info:    rickmorty.PageInfo{Count: len(results), Pages: rickmorty.TotalPages},
			Results: results,
		})
	})
}

// SetEpisode serves one episode at /api/episode/{id}.
func (m *MockAPI) SetEpisode(id int, name string) {
	m.SetHandler(fmt.Sprintf("%s/episode/%d", APIPrefix, id), func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, rickmorty.Episode{
			ID:   id,
			Name: name,
			Code: "S01E" + strconv.Itoa(id),
		})
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetConditionalCount returns the number of conditional requests.
func (m *MockAPI) GetConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// Queries returns the query parameters of every request made to path.
func (m *MockAPI) Queries(path string) []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]url.Values, len(m.queries[path]))
	copy(out, m.queries[path])
	return out
}

// RequestsTo returns how many requests hit path.
func (m *MockAPI) RequestsTo(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.queries[path])
}

// NewCharacter builds a character with the given episode URLs.
func NewCharacter(id int, name string, episodes ...string) rickmorty.Character {
	if episodes == nil {
		episodes = []string{}
	}
	return rickmorty.Character{
		ID:      id,
		Name:    name,
		Status:  rickmorty.StatusAlive,
		Species: "Human",
		Image:   fmt.Sprintf("https://rickandmortyapi.com/api/character/avatar/%d.jpeg", id),
		Location: rickmorty.Location{
			Name: "Earth (C-137)",
			URL:  "https://rickandmortyapi.com/api/location/1",
		},
		Episode: episodes,
	}
}

// NewCharacters builds n characters with ids starting at firstID and no
// episodes.
func NewCharacters(firstID, n int) []rickmorty.Character {
	out := make([]rickmorty.Character, 0, n)
	for i := 0; i < n; i++ {
		id := firstID + i
		out = append(out, NewCharacter(id, fmt.Sprintf("Character %d", id)))
	}
	return out
}

// NewConditionalHandler answers 304 when If-None-Match equals etag.
func NewConditionalHandler(etag string, data string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")

		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

func writeNothingHere(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "There is nothing here"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
