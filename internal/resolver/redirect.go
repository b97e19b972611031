package resolver

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/models"
)

// ResolveRedirects issues one non-following GET per link and keeps its Location as the final URL.
// The output has the same length and order as links. A link answered without Location resolves
// to an empty URL; a transport failure aborts the whole batch.
func (r *Resolver) ResolveRedirects(ctx context.Context, links []models.PendingLink) ([]models.ResolvedLink, error) {
	resolved := make([]models.ResolvedLink, len(links))

	if r.redirectConcurrency <= 1 {
		for i, link := range links {
			result, err := r.resolveRedirect(ctx, link)
			if err != nil {
				return nil, err
			}
			resolved[i] = result
		}
		return resolved, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.redirectConcurrency)
	for i, link := range links {
		g.Go(func() error {
			result, err := r.resolveRedirect(gctx, link)
			if err != nil {
				return err
			}
			resolved[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func (r *Resolver) resolveRedirect(ctx context.Context, link models.PendingLink) (models.ResolvedLink, error) {
	logger := config.GetLogger()

	location, err := r.fetchLocation(ctx, link.URL)
	if err != nil {
		logger.Error().Err(err).Str("quality", link.Quality).Str("url", link.URL).Msg("Failed to resolve download redirect")
		return models.ResolvedLink{}, err
	}
	if location == "" {
		logger.Warn().Str("quality", link.Quality).Str("url", link.URL).Msg("Download endpoint answered without a redirect")
	}

	return models.ResolvedLink{Quality: link.Quality, URL: location}, nil
}

// fetchLocation returns the Location of linkURL's response without following it or reading its body.
// A relative Location is resolved against linkURL.
func (r *Resolver) fetchLocation(ctx context.Context, linkURL string) (string, error) {
	return withStage(ctx, r, stageRedirect, linkURL, func(ctx context.Context) (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, linkURL, nil)
		if err != nil {
			return "", err
		}
		r.headers.applyBrowser(req)
		req.Header.Set("Referer", linkURL)

		resp, err := r.redirectClient.Do(req)
		if err != nil {
			return "", err
		}
		_ = resp.Body.Close()

		location, err := resp.Location()
		if errors.Is(err, http.ErrNoLocation) {
			return "", nil
		}
		if err != nil {
			return resp.Header.Get("Location"), nil
		}
		return location.String(), nil
	})
}
