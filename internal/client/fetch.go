package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/cache"
	"github.com/nontonanime/api/internal/config"
)

// fetchPage downloads an HTML page from the source site with browser headers.
// Cacheable pages are served from and stored into the page cache.
func (c *client) fetchPage(ctx context.Context, pageURL string, cacheable bool) ([]byte, error) {
	logger := config.GetLogger()

	key := cache.Key(pageURL)
	if cacheable {
		if body, ok := c.pages.Get(ctx, key); ok {
			logger.Debug().Str("url", pageURL).Msg("Serving page from cache")
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &apperrors.ErrUpstreamFetch{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error().Err(err).Str("url", pageURL).Msg("Failed to fetch page")
		return nil, &apperrors.ErrUpstreamFetch{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error().Int("status", resp.StatusCode).Str("url", pageURL).Msg("Unexpected page status")
		return nil, &apperrors.ErrUpstreamFetch{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.ErrUpstreamFetch{URL: pageURL, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if cacheable {
		c.pages.Set(ctx, key, body)
	}
	return body, nil
}

// validatePageURL accepts only absolute http(s) URLs.
func validatePageURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return apperrors.NewValidationError("url", "URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewValidationError("url", "URL must be an absolute http(s) URL")
	}
	return nil
}
