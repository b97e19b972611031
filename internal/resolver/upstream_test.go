package resolver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nontonanime/api/internal/testutil"
)

const playerPath = "/video/player"

var testHeaders = Headers{
	UserAgent:   "test-agent/1.0",
	Fingerprint: "fp-test",
	Origin:      "https://source.test/",
}

type recordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

// fakeUpstream emulates the player page, the token and manifest endpoints and the download redirects.
type fakeUpstream struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest

	page           string
	tokenStatus    int
	tokenBody      string
	tokenDelay     time.Duration
	manifestStatus int
	manifestBody   string
	// redirects maps a download path to its Location; an empty value answers 200 without Location.
	redirects     map[string]string
	redirectDelay map[string]time.Duration
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	u := &fakeUpstream{
		t: t,
		page: testutil.GeneratePlayerHTML(testutil.PlayerPageOptions{
			EncryptedParam: testutil.StringPtr("E1"),
		}),
		tokenStatus:    http.StatusOK,
		tokenBody:      `{"challenge":"c1","token":"t1","timestamp":"100"}`,
		manifestStatus: http.StatusOK,
		manifestBody:   `{"links":{"720p":[{"url":"/files/a"}],"480p":[{"url":"/files/b"}]}}`,
		redirects: map[string]string{
			"/files/a": "https://cdn.test/a.mp4",
			"/files/b": "https://cdn.test/b.mp4",
		},
		redirectDelay: map[string]time.Duration{},
	}
	u.server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.server.Close)
	return u
}

func (u *fakeUpstream) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.requests = append(u.requests, recordedRequest{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     string(body),
	})
	u.mu.Unlock()

	switch {
	case r.URL.Path == playerPath:
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		_, _ = io.WriteString(w, u.page)
	case r.URL.Path == tokenPath:
		if u.tokenDelay > 0 {
			select {
			case <-time.After(u.tokenDelay):
			case <-r.Context().Done():
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.tokenStatus)
		_, _ = io.WriteString(w, u.tokenBody)
	case r.URL.Path == manifestPath:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(u.manifestStatus)
		_, _ = io.WriteString(w, u.manifestBody)
	case strings.HasPrefix(r.URL.Path, "/files/"):
		if d := u.redirectDelay[r.URL.Path]; d > 0 {
			time.Sleep(d)
		}
		if location := u.redirects[r.URL.Path]; location != "" {
			w.Header().Set("Location", location)
			w.WriteHeader(http.StatusFound)
			return
		}
		_, _ = io.WriteString(w, "file payload")
	default:
		http.NotFound(w, r)
	}
}

func (u *fakeUpstream) targetURL() string {
	return u.server.URL + playerPath + "?id=42"
}

// requestsTo returns the recorded requests whose path is path.
func (u *fakeUpstream) requestsTo(path string) []recordedRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	var matched []recordedRequest
	for _, req := range u.requests {
		if req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}

func (u *fakeUpstream) countPrefix(prefix string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, req := range u.requests {
		if strings.HasPrefix(req.Path, prefix) {
			n++
		}
	}
	return n
}

func (u *fakeUpstream) resolver(opts ...func(*Options)) *Resolver {
	o := Options{
		ResolverHost: u.server.URL,
		Headers:      testHeaders,
		CallTimeout:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return New(u.server.Client(), o)
}
