// SPDX-License-Identifier: MIT

package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

// MockServer provides a configurable media-list endpoint for tests and local demos.
type MockServer struct {
	*httptest.Server
	mu        sync.RWMutex
	items     []media.Descriptor
	listField string
	status    int
	failures  int // number of 500 responses before success
	delay     time.Duration
	rawBody   []byte
	requests  int
}

// NewMockServer starts a mock endpoint serving items under the default list field at /api/media.
func NewMockServer(items ...media.Descriptor) *MockServer {
	m := &MockServer{
		items:     append([]media.Descriptor(nil), items...),
		listField: DefaultListField,
		status:    http.StatusOK,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/media", m.handleMedia)
	m.Server = httptest.NewServer(mux)
	return m
}

// Endpoint returns the full URL of the media-list route.
func (m *MockServer) Endpoint() string {
	return m.URL + "/api/media"
}

// SetItems replaces the served descriptors.
func (m *MockServer) SetItems(items ...media.Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]media.Descriptor(nil), items...)
	m.rawBody = nil
}

// SetStatus forces every response to the given status code.
func (m *MockServer) SetStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// FailNext makes the next n requests answer 500.
func (m *MockServer) FailNext(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = n
}

// SetDelay adds artificial latency to every response.
func (m *MockServer) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetRawBody serves body verbatim (for malformed-response cases).
func (m *MockServer) SetRawBody(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawBody = []byte(body)
}

// SetListField changes the envelope field holding the array.
func (m *MockServer) SetListField(field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listField = field
}

// Requests returns how many requests have been served.
func (m *MockServer) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

func (m *MockServer) handleMedia(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests++
	delay := m.delay
	failing := m.failures > 0
	if failing {
		m.failures--
	}
	status := m.status
	raw := m.rawBody
	field := m.listField
	items := append([]media.Descriptor(nil), m.items...)
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if failing {
		http.Error(w, `{"error":"temporary failure"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if raw != nil {
		_, _ = w.Write(raw)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{field: items})
}
