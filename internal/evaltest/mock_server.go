// Package evaltest provides a mock evaluation service for testing
// evaluator clients and the policy engine against realistic HTTP
// behavior: delayed responses, error statuses, and malformed bodies.
package evaltest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines a canned response for one endpoint.
type MockResponse struct {
	StatusCode int
	Body       any
	RawBody    string // used verbatim when set, for malformed payloads
	Delay      time.Duration
}

// MockServer is a mock evaluation HTTP server.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse
	requests  map[string]int
	bodies    map[string][]byte
	mu        sync.Mutex
}

// NewMockServer creates and starts a mock evaluation server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
		requests:  make(map[string]int),
		bodies:    make(map[string][]byte),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts the server down.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets the canned response for a path.
func (ms *MockServer) SetResponse(path string, resp MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = resp
}

// RequestCount returns how many requests a path has received.
func (ms *MockServer) RequestCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.requests[path]
}

// LastRequestBody returns the body of the most recent request to a path,
// or nil if the path has not been called.
func (ms *MockServer) LastRequestBody(path string) []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.bodies[path]
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests[r.URL.Path]++
	ms.bodies[r.URL.Path] = body
	resp, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	if resp.RawBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(resp.RawBody))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if resp.Body != nil {
		json.NewEncoder(w).Encode(resp.Body)
	}
}

// PassResponse builds a passing evaluation response body.
func PassResponse(score float64) map[string]any {
	return map[string]any{
		"score":      score,
		"passed":     true,
		"details":    map[string]any{},
		"latency_ms": 1.0,
	}
}

// FailResponse builds a failing evaluation response body with details.
func FailResponse(score float64, details map[string]any) map[string]any {
	if details == nil {
		details = map[string]any{}
	}
	return map[string]any{
		"score":      score,
		"passed":     false,
		"details":    details,
		"latency_ms": 1.0,
	}
}
