package htb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testToken = "test-token"

// fakeAPI serves canned bodies keyed by request URI relative to /api/v4.
// A route with several bodies answers them in turn and repeats the last one.
type fakeAPI struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string][]string
	served   map[string]int
	requests []*http.Request
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:      t,
		routes: make(map[string][]string),
		served: make(map[string]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) handle(uri string, bodies ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[uri] = bodies
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r.Clone(context.Background()))
	uri := strings.TrimPrefix(r.URL.RequestURI(), "/api/v4")

	bodies, ok := f.routes[uri]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"not found"}`))
		return
	}

	i := f.served[uri]
	if i >= len(bodies) {
		i = len(bodies) - 1
	}
	f.served[uri]++

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(bodies[i]))
}

// uris returns every request URI served so far, in order.
func (f *fakeAPI) uris() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, strings.TrimPrefix(r.URL.RequestURI(), "/api/v4"))
	}
	return out
}

// sleepRecorder replaces the real wait and records each requested duration.
type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func (f *fakeAPI) client(opts ...Option) (*Client, *sleepRecorder) {
	cfg := DefaultClientConfig(testToken)
	cfg.BaseURL = f.server.URL + "/api/v4"

	rec := &sleepRecorder{}
	opts = append([]Option{WithHTTPClient(f.server.Client()), WithSleep(rec.sleep)}, opts...)
	return NewClient(cfg, opts...), rec
}
