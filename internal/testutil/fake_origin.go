package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Response is a canned origin reply.
type Response struct {
	Status int // 0 = 200
	Body   string
}

// FakeOrigin is an httptest server standing in for the DefiLlama origin hosts.
// Replies are keyed by request path plus raw query; unknown paths answer 404.
type FakeOrigin struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]Response
	calls     map[string]int
}

// NewFakeOrigin starts a FakeOrigin and closes it when t finishes.
func NewFakeOrigin(t testing.TB) *FakeOrigin {
	t.Helper()
	o := &FakeOrigin{
		responses: make(map[string]Response),
		calls:     make(map[string]int),
	}
	o.Server = httptest.NewServer(http.HandlerFunc(o.serve))
	t.Cleanup(o.Close)
	return o
}

// Handle registers the reply for path (including any "?query").
func (o *FakeOrigin) Handle(path string, r Response) {
	o.mu.Lock()
	o.responses[path] = r
	o.mu.Unlock()
}

// JSON registers a 200 reply with body for path.
func (o *FakeOrigin) JSON(path, body string) {
	o.Handle(path, Response{Status: http.StatusOK, Body: body})
}

// Calls returns how many requests reached path.
func (o *FakeOrigin) Calls(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[path]
}

// TotalCalls returns the number of requests across all paths.
func (o *FakeOrigin) TotalCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.calls {
		n += c
	}
	return n
}

func (o *FakeOrigin) serve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	o.mu.Lock()
	o.calls[key]++
	resp, ok := o.responses[key]
	o.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
		return
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(resp.Body))
}
