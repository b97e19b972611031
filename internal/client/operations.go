package client

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/metrics"
	"github.com/nontonanime/api/internal/models"
	"github.com/nontonanime/api/internal/resolver"
)

// Failure messages reported in envelopes, per operation
const (
	homeFailedMessage     = "failed to fetch home data"
	searchFailedMessage   = "failed to search anime"
	detailFailedMessage   = "failed to fetch anime detail"
	downloadFailedMessage = "failed to fetch download links"
)

// Home lists the cards of the site's front page.
func (c *client) Home(ctx context.Context) models.Envelope[[]models.CatalogEntry] {
	entries, err := c.home(ctx)
	return envelope("home", homeFailedMessage, entries, err)
}

func (c *client) home(ctx context.Context) ([]models.CatalogEntry, error) {
	body, err := c.fetchPage(ctx, c.baseURL, true)
	if err != nil {
		return nil, err
	}
	return c.catalogParser.ParseHtml(bytes.NewReader(body))
}

// Search runs the site search for query.
func (c *client) Search(ctx context.Context, query string) models.Envelope[[]models.SearchResult] {
	results, err := c.search(ctx, query)
	return envelope("search", searchFailedMessage, results, err)
}

func (c *client) search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewValidationError("q", "Query is required")
	}

	body, err := c.fetchPage(ctx, c.siteURL("/?s="+url.QueryEscape(query)), true)
	if err != nil {
		return nil, err
	}
	return c.searchParser.ParseHtml(bytes.NewReader(body))
}

// Detail reads an anime page.
func (c *client) Detail(ctx context.Context, pageURL string) models.Envelope[models.AnimeDetail] {
	detail, err := c.detail(ctx, pageURL)
	return envelope("detail", detailFailedMessage, detail, err)
}

func (c *client) detail(ctx context.Context, pageURL string) (models.AnimeDetail, error) {
	if err := validatePageURL(pageURL); err != nil {
		return models.AnimeDetail{}, err
	}

	body, err := c.fetchPage(ctx, pageURL, true)
	if err != nil {
		return models.AnimeDetail{}, err
	}
	return c.detailParser.ParseHtml(bytes.NewReader(body))
}

// Download reads an episode page and resolves the download links of its local server.
// A failed resolution does not fail the operation: it is reported inside the result.
func (c *client) Download(ctx context.Context, episodeURL string) models.Envelope[models.EpisodePage] {
	page, err := c.download(ctx, episodeURL)
	return envelope("download", downloadFailedMessage, page, err)
}

func (c *client) download(ctx context.Context, episodeURL string) (models.EpisodePage, error) {
	logger := config.GetLogger()

	if err := validatePageURL(episodeURL); err != nil {
		return models.EpisodePage{}, err
	}

	body, err := c.fetchPage(ctx, episodeURL, false)
	if err != nil {
		return models.EpisodePage{}, err
	}

	servers, err := c.episodeParser.ParseHtml(bytes.NewReader(body))
	if err != nil {
		return models.EpisodePage{}, err
	}

	page := models.EpisodePage{
		Title:        servers.Title,
		Date:         servers.Date,
		Alternatives: servers.Alternatives,
	}

	if servers.LocalURL == "" {
		logger.Info().Str("url", episodeURL).Msg("Episode has no local server")
		page.Download = models.DownloadOutcome{NoLocalServer: true}
		return page, nil
	}

	target := absoluteURL(episodeURL, servers.LocalURL)
	links, err := c.links.ResolveDownloads(ctx, target)
	if err != nil {
		logger.Warn().Err(err).Str("episode", episodeURL).Str("player", target).Msg("Download resolution failed")
		page.Download = models.DownloadOutcome{Err: resolver.ToResolutionError(err)}
		return page, nil
	}

	page.Download = models.DownloadOutcome{Links: links}
	return page, nil
}

// absoluteURL resolves a possibly relative href found on the page at base.
func absoluteURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// envelope converts an operation outcome into its envelope and records it.
// Validation failures carry their own message; other failures use failMessage with the cause as details.
func envelope[T any](operation, failMessage string, result T, err error) models.Envelope[T] {
	code := apperrors.StatusCode(err)
	metrics.OperationsTotal.WithLabelValues(operation, strconv.Itoa(code)).Inc()

	if err == nil {
		return models.Ok(result)
	}

	if errors.Is(err, &apperrors.ErrValidation{}) {
		return models.Fail[T](code, err.Error(), "")
	}

	logger := config.GetLogger()
	logger.Error().Err(err).Str("operation", operation).Int("code", code).Msg("Operation failed")
	return models.Fail[T](code, failMessage, err.Error())
}
