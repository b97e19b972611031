package testutil

import (
	"context"
	"sync"

	"github.com/nontonanime/api/internal/models"
)

// FakeClient is a scriptable stand-in for the scraping client.
// Unset functions answer with an empty successful envelope.
type FakeClient struct {
	HomeFunc     func(ctx context.Context) models.Envelope[[]models.CatalogEntry]
	SearchFunc   func(ctx context.Context, query string) models.Envelope[[]models.SearchResult]
	DetailFunc   func(ctx context.Context, pageURL string) models.Envelope[models.AnimeDetail]
	DownloadFunc func(ctx context.Context, episodeURL string) models.Envelope[models.EpisodePage]

	mu    sync.Mutex
	calls []string
}

func (f *FakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

// Calls returns the operations invoked so far, with their argument when they take one.
func (f *FakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeClient) Home(ctx context.Context) models.Envelope[[]models.CatalogEntry] {
	f.record("home")
	if f.HomeFunc != nil {
		return f.HomeFunc(ctx)
	}
	return models.Ok([]models.CatalogEntry{})
}

func (f *FakeClient) Search(ctx context.Context, query string) models.Envelope[[]models.SearchResult] {
	f.record("search:" + query)
	if f.SearchFunc != nil {
		return f.SearchFunc(ctx, query)
	}
	return models.Ok([]models.SearchResult{})
}

func (f *FakeClient) Detail(ctx context.Context, pageURL string) models.Envelope[models.AnimeDetail] {
	f.record("detail:" + pageURL)
	if f.DetailFunc != nil {
		return f.DetailFunc(ctx, pageURL)
	}
	return models.Ok(models.AnimeDetail{})
}

func (f *FakeClient) Download(ctx context.Context, episodeURL string) models.Envelope[models.EpisodePage] {
	f.record("download:" + episodeURL)
	if f.DownloadFunc != nil {
		return f.DownloadFunc(ctx, episodeURL)
	}
	return models.Ok(models.EpisodePage{})
}

func (f *FakeClient) BaseURL() string {
	return "https://source.test/"
}

func (f *FakeClient) Close() error {
	return nil
}
