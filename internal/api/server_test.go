package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nontonanime/api/internal/models"
	"github.com/nontonanime/api/internal/testutil"
)

func do(t *testing.T, fake *testutil.FakeClient, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(fake, Options{Port: 3000})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestRouter_Index(t *testing.T) {
	rec := do(t, &testutil.FakeClient{}, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	body := decode(t, rec)
	if body["scraper_source"] != "https://source.test/" {
		t.Errorf("Unexpected scraper source %v", body["scraper_source"])
	}
	endpoints, ok := body["endpoints"].(map[string]any)
	if !ok || len(endpoints) != 5 {
		t.Errorf("Expected 5 endpoints, got %v", body["endpoints"])
	}
}

func TestRouter_ScraperRoutes(t *testing.T) {
	fake := &testutil.FakeClient{
		HomeFunc: func(context.Context) models.Envelope[[]models.CatalogEntry] {
			return models.Ok([]models.CatalogEntry{{Title: "Dandadan"}})
		},
	}

	tests := []struct {
		target   string
		wantCall string
	}{
		{target: "/api/home", wantCall: "home"},
		{target: "/api/search?q=one+piece", wantCall: "search:one piece"},
		{target: "/api/detail?url=https%3A%2F%2Fsite.test%2Fanime%2Fx%2F", wantCall: "detail:https://site.test/anime/x/"},
		{target: "/api/download?url=https://site.test/ep-1/", wantCall: "download:https://site.test/ep-1/"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			before := len(fake.Calls())
			rec := do(t, fake, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			calls := fake.Calls()
			if len(calls) != before+1 || calls[len(calls)-1] != tt.wantCall {
				t.Errorf("Expected call %q, got %v", tt.wantCall, calls[before:])
			}
			if body := decode(t, rec); body["success"] != true {
				t.Errorf("Expected success envelope, got %v", body)
			}
		})
	}
}

func TestRouter_StatusFollowsEnvelope(t *testing.T) {
	fake := &testutil.FakeClient{
		SearchFunc: func(_ context.Context, query string) models.Envelope[[]models.SearchResult] {
			return models.Fail[[]models.SearchResult](http.StatusBadRequest, "Query is required", "")
		},
		DetailFunc: func(context.Context, string) models.Envelope[models.AnimeDetail] {
			return models.Fail[models.AnimeDetail](http.StatusInternalServerError, "failed to fetch anime detail", "status 503")
		},
	}

	rec := do(t, fake, "/api/search")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"] != "Query is required" || body["code"] != float64(400) {
		t.Errorf("Unexpected body %v", body)
	}
	if _, ok := body["result"]; ok {
		t.Error("Failed envelopes must not carry a result")
	}

	rec = do(t, fake, "/api/detail?url=https://site.test/x/")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
	if body := decode(t, rec); body["details"] != "status 503" {
		t.Errorf("Expected details to be kept, got %v", body)
	}
}

func TestRouter_DownloadOutcomeShapes(t *testing.T) {
	fake := &testutil.FakeClient{
		DownloadFunc: func(_ context.Context, episodeURL string) models.Envelope[models.EpisodePage] {
			page := models.EpisodePage{Title: "Episode 1", Alternatives: []models.AlternativeServer{}}
			switch {
			case strings.Contains(episodeURL, "none"):
				page.Download = models.DownloadOutcome{NoLocalServer: true}
			case strings.Contains(episodeURL, "broken"):
				page.Download = models.DownloadOutcome{Err: &models.ResolutionError{Error: "failed to resolve final links from the local server", Details: "boom"}}
			default:
				page.Download = models.DownloadOutcome{Links: []models.ResolvedLink{{Quality: "720p", URL: "https://cdn.test/a.mp4"}}}
			}
			return models.Ok(page)
		},
	}

	tests := []struct {
		target string
		want   string
	}{
		{target: "/api/download?url=https://site.test/ok/", want: `"download":[{"quality":"720p","url":"https://cdn.test/a.mp4"}]`},
		{target: "/api/download?url=https://site.test/none/", want: `"download":"No lokal server found"`},
		{target: "/api/download?url=https://site.test/broken/", want: `"download":{"error":"failed to resolve final links from the local server","details":"boom"}`},
	}

	for _, tt := range tests {
		rec := do(t, fake, tt.target)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", tt.target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: expected body to contain %s, got %s", tt.target, tt.want, rec.Body.String())
		}
	}
}

func TestRouter_NotFound(t *testing.T) {
	for _, target := range []string{"/nope", "/api/unknown"} {
		rec := do(t, &testutil.FakeClient{}, target)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
		body := decode(t, rec)
		if body["success"] != false || body["code"] != float64(404) || body["error"] != NotFoundMessage {
			t.Errorf("%s: unexpected body %v", target, body)
		}
	}
}

func TestRouter_PanicBecomesEnvelope(t *testing.T) {
	fake := &testutil.FakeClient{
		HomeFunc: func(context.Context) models.Envelope[[]models.CatalogEntry] {
			panic("parser exploded")
		},
	}

	rec := do(t, fake, "/api/home")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	if body := decode(t, rec); body["success"] != false || body["details"] != "parser exploded" {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestRouter_Health(t *testing.T) {
	rec := do(t, &testutil.FakeClient{}, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid health body: %v", err)
	}
	if resp.Status != "OK" || resp.Port != 3000 {
		t.Errorf("Unexpected health header %+v", resp)
	}
	if resp.ServerSpecs.System.CPUCores < 1 || resp.ServerSpecs.System.GoVersion == "" {
		t.Errorf("Unexpected system info %+v", resp.ServerSpecs.System)
	}
	if resp.ServerSpecs.Memory.Goroutines < 1 {
		t.Errorf("Unexpected memory info %+v", resp.ServerSpecs.Memory)
	}
	if _, err := time.Parse(time.RFC3339Nano, resp.ServerSpecs.Timestamp); err != nil {
		t.Errorf("Timestamp %q is not RFC 3339: %v", resp.ServerSpecs.Timestamp, err)
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{d: 0, want: "0d 0h 0m 0s"},
		{d: 59*time.Second + 900*time.Millisecond, want: "0d 0h 0m 59s"},
		{d: 26*time.Hour + 3*time.Minute + 4*time.Second, want: "1d 2h 3m 4s"},
	}

	for _, tt := range tests {
		if got := formatUptime(tt.d); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMegabytes(t *testing.T) {
	if got := megabytes(3 * 1024 * 1024 / 2); got != "1.50" {
		t.Errorf("Expected 1.50, got %q", got)
	}
}
