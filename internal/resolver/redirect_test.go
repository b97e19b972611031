package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/models"
)

func TestResolveRedirects_SingleRequestPerLink(t *testing.T) {
	u := newFakeUpstream(t)
	u.redirects = map[string]string{
		"/files/a": "https://cdn.test/a.mp4",
		"/files/b": "",
		"/files/c": "/final/c.mp4",
	}
	host := u.server.URL
	links := []models.PendingLink{
		{Quality: "1080p", URL: host + "/files/a"},
		{Quality: "720p", URL: host + "/files/b"},
		{Quality: "480p", URL: host + "/files/c"},
	}

	resolved, err := u.resolver().ResolveRedirects(context.Background(), links)
	if err != nil {
		t.Fatalf("ResolveRedirects failed: %v", err)
	}

	expected := []models.ResolvedLink{
		{Quality: "1080p", URL: "https://cdn.test/a.mp4"},
		{Quality: "720p", URL: ""},
		{Quality: "480p", URL: host + "/final/c.mp4"},
	}
	for i := range expected {
		if resolved[i] != expected[i] {
			t.Errorf("Link %d: expected %+v, got %+v", i, expected[i], resolved[i])
		}
	}

	for _, link := range links {
		path := link.URL[len(host):]
		reqs := u.requestsTo(path)
		if len(reqs) != 1 {
			t.Errorf("Expected exactly 1 request to %s, got %d", path, len(reqs))
			continue
		}
		if reqs[0].Method != http.MethodGet {
			t.Errorf("Expected GET to %s, got %s", path, reqs[0].Method)
		}
		if got := reqs[0].Header.Get("Referer"); got != link.URL {
			t.Errorf("Referer for %s = %q, want the link itself", path, got)
		}
		if got := reqs[0].Header.Get("User-Agent"); got != testHeaders.UserAgent {
			t.Errorf("User-Agent for %s = %q", path, got)
		}
	}
	if n := u.countPrefix("/final/"); n != 0 {
		t.Errorf("Redirect targets must never be fetched, got %d requests", n)
	}
}

func TestResolveRedirects_ParallelPreservesOrder(t *testing.T) {
	u := newFakeUpstream(t)
	u.redirects = map[string]string{}
	var links []models.PendingLink
	for i := range 6 {
		path := fmt.Sprintf("/files/%d", i)
		u.redirects[path] = fmt.Sprintf("https://cdn.test/%d.mp4", i)
		// Earlier links answer later so completion order is reversed.
		u.redirectDelay[path] = time.Duration(6-i) * 20 * time.Millisecond
		links = append(links, models.PendingLink{Quality: fmt.Sprintf("q%d", i), URL: u.server.URL + path})
	}

	r := u.resolver(func(o *Options) { o.RedirectConcurrency = 4 })
	resolved, err := r.ResolveRedirects(context.Background(), links)
	if err != nil {
		t.Fatalf("ResolveRedirects failed: %v", err)
	}

	if len(resolved) != len(links) {
		t.Fatalf("Expected %d links, got %d", len(links), len(resolved))
	}
	for i := range links {
		want := models.ResolvedLink{Quality: fmt.Sprintf("q%d", i), URL: fmt.Sprintf("https://cdn.test/%d.mp4", i)}
		if resolved[i] != want {
			t.Errorf("Position %d: expected %+v, got %+v", i, want, resolved[i])
		}
	}
	if n := u.countPrefix("/files/"); n != len(links) {
		t.Errorf("Expected %d redirect requests, got %d", len(links), n)
	}
}

func TestResolveRedirects_TransportErrorAborts(t *testing.T) {
	u := newFakeUpstream(t)
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	links := []models.PendingLink{
		{Quality: "720p", URL: u.server.URL + "/files/a"},
		{Quality: "480p", URL: deadURL + "/files/b"},
	}

	for _, concurrency := range []int{1, 2} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			r := u.resolver(func(o *Options) { o.RedirectConcurrency = concurrency })
			resolved, err := r.ResolveRedirects(context.Background(), links)
			if err == nil {
				t.Fatalf("Expected an error, got %+v", resolved)
			}
			if !errors.Is(err, &apperrors.ErrUpstreamFetch{}) {
				t.Errorf("Expected ErrUpstreamFetch, got %v", err)
			}
			if resolved != nil {
				t.Errorf("Expected no partial result, got %+v", resolved)
			}
		})
	}
}

func TestResolveRedirects_Empty(t *testing.T) {
	u := newFakeUpstream(t)
	resolved, err := u.resolver().ResolveRedirects(context.Background(), nil)
	if err != nil {
		t.Fatalf("ResolveRedirects failed: %v", err)
	}
	if resolved == nil || len(resolved) != 0 {
		t.Errorf("Expected empty non-nil result, got %#v", resolved)
	}
}

func TestNew_DoesNotAlterSharedClient(t *testing.T) {
	shared := &http.Client{}
	New(shared, Options{})
	if shared.CheckRedirect != nil {
		t.Error("New must not change the redirect policy of the shared client")
	}
}
