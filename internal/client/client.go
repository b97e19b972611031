package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/nontonanime/api/internal/cache"
	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
	"github.com/nontonanime/api/internal/parser"
	"github.com/nontonanime/api/internal/resolver"
)

// Client defines the public operations on the NontonAnimeID site.
// Every operation reports its outcome as an envelope and never returns a Go error.
type Client interface {
	Home(ctx context.Context) models.Envelope[[]models.CatalogEntry]
	Search(ctx context.Context, query string) models.Envelope[[]models.SearchResult]
	Detail(ctx context.Context, pageURL string) models.Envelope[models.AnimeDetail]
	Download(ctx context.Context, episodeURL string) models.Envelope[models.EpisodePage]

	// BaseURL is the source site the client scrapes.
	BaseURL() string

	// Close releases any resources held by the client (e.g., cache connections).
	Close() error
}

// LinkResolver resolves a local player page into final download links.
type LinkResolver interface {
	ResolveDownloads(ctx context.Context, targetURL string) ([]models.ResolvedLink, error)
}

// client implements the Client interface
type client struct {
	httpClient    *http.Client
	baseURL       string
	userAgent     string
	pages         cache.Cache
	links         LinkResolver
	catalogParser parser.Parser[models.CatalogEntry]
	searchParser  parser.Parser[models.SearchResult]
	detailParser  parser.SingleResultParser[models.AnimeDetail]
	episodeParser parser.SingleResultParser[models.EpisodeServers]
}

// NewClient creates a new client instance with proxy configuration if provided.
// A page cache that cannot be created is logged and replaced by no caching.
func NewClient(cfg *config.Config) Client {
	logger := config.GetLogger()

	settings := *cfg
	settings.ApplyDefaults()

	httpClient := &http.Client{
		Timeout:   config.Duration("client_timeout", settings.ClientTimeout, 30*time.Second),
		Transport: newTransport(&settings),
	}

	pages, err := cache.New(cache.OptionsFromConfig(&settings))
	if err != nil {
		logger.Warn().Err(err).Str("type", settings.Cache.Type).Msg("Page cache unavailable, continuing without cache")
		pages, _ = cache.New(cache.Options{Type: cache.TypeNone})
	}

	return &client{
		httpClient:    httpClient,
		baseURL:       settings.SourceDomain,
		userAgent:     settings.UserAgent,
		pages:         pages,
		links:         resolver.New(httpClient, resolver.OptionsFromConfig(&settings)),
		catalogParser: parser.NewCatalogParser(),
		searchParser:  parser.NewSearchParser(),
		detailParser:  parser.NewDetailParser(),
		episodeParser: parser.NewEpisodeServerParser(),
	}
}

func (c *client) BaseURL() string {
	return c.baseURL
}

// Close releases any resources held by the client, such as cache connections.
func (c *client) Close() error {
	return c.pages.Close()
}

// siteURL resolves a path against the source site base URL.
func (c *client) siteURL(path string) string {
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
