// Package resolver turns a local player page into final download links.
//
// The pipeline is split in two phases. ResolveManifest fetches the player page,
// acquires a security token and exchanges both for the quality manifest,
// producing links into the resolver host. ResolveRedirects then reads each
// link's redirect target with a single request.
package resolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/timeout"
	"golang.org/x/sync/errgroup"

	"github.com/nontonanime/api/internal/apperrors"
	"github.com/nontonanime/api/internal/config"
	"github.com/nontonanime/api/internal/metrics"
	"github.com/nontonanime/api/internal/models"
	"github.com/nontonanime/api/internal/parser"
)

// Pipeline stages, used as metric labels.
const (
	stagePage     = "page"
	stageToken    = "token"
	stageManifest = "manifest"
	stageRedirect = "redirect"
)

// Options configures a Resolver
type Options struct {
	// ResolverHost is the origin of the token, manifest and download endpoints, without trailing slash.
	ResolverHost string
	Headers      Headers
	// CallTimeout bounds each upstream call. Zero disables the limit.
	CallTimeout time.Duration
	// RedirectConcurrency is the number of redirects resolved at once. Values below 2 resolve them one by one.
	RedirectConcurrency int
	// Scripts overrides the player script extractor.
	Scripts parser.ScriptParamExtractor
}

// Resolver runs the download link resolution pipeline. It holds no per-request state
// and is safe for concurrent use.
type Resolver struct {
	httpClient          *http.Client
	redirectClient      *http.Client
	host                string
	headers             Headers
	callTimeout         time.Duration
	redirectConcurrency int
	scripts             parser.ScriptParamExtractor
}

// New creates a Resolver on top of httpClient. Redirect lookups use a copy of it that never follows redirects.
func New(httpClient *http.Client, opts Options) *Resolver {
	redirectClient := *httpClient
	redirectClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	scripts := opts.Scripts
	if scripts == nil {
		scripts = parser.NewScriptParamExtractor()
	}

	return &Resolver{
		httpClient:          httpClient,
		redirectClient:      &redirectClient,
		host:                opts.ResolverHost,
		headers:             opts.Headers,
		callTimeout:         opts.CallTimeout,
		redirectConcurrency: opts.RedirectConcurrency,
		scripts:             scripts,
	}
}

// OptionsFromConfig maps the loaded configuration onto resolver options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ResolverHost:        cfg.ResolverDomain,
		Headers:             HeadersFromConfig(cfg),
		CallTimeout:         config.Duration("resolver.call_timeout", cfg.Resolver.CallTimeout, 15*time.Second),
		RedirectConcurrency: cfg.Resolver.RedirectConcurrency,
	}
}

// ResolveManifest runs the first phase for targetURL and returns one pending link per quality,
// in manifest order. The token request and the player page fetch run concurrently; the manifest
// endpoint is only called once both succeeded.
func (r *Resolver) ResolveManifest(ctx context.Context, targetURL string) ([]models.PendingLink, error) {
	logger := config.GetLogger()

	var (
		token  models.SecurityToken
		params models.ScriptParameters
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		token, err = r.AcquireToken(gctx, targetURL)
		return err
	})
	g.Go(func() error {
		page, err := r.fetchPage(gctx, targetURL)
		if err != nil {
			return err
		}
		params, err = r.scripts.Extract(bytes.NewReader(page))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifestURL := r.ManifestURL(params)
	body, err := r.requestManifest(ctx, targetURL, manifestURL, token)
	if err != nil {
		logger.Error().Err(err).Str("target", targetURL).Msg("Manifest request failed")
		return nil, err
	}

	entries, err := parseManifest(body)
	if err != nil {
		logger.Error().Err(err).Str("target", targetURL).Msg("Failed to parse download manifest")
		return nil, err
	}

	links := r.pendingLinks(entries)
	logger.Debug().Str("target", targetURL).Int("qualities", len(links)).Msg("Resolved download manifest")
	return links, nil
}

// ResolveDownloads runs both phases for targetURL.
func (r *Resolver) ResolveDownloads(ctx context.Context, targetURL string) ([]models.ResolvedLink, error) {
	logger := config.GetLogger()
	start := time.Now()

	links, err := r.ResolveManifest(ctx, targetURL)
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	resolved, err := r.ResolveRedirects(ctx, links)
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.ResolutionsTotal.WithLabelValues("success").Inc()
	logger.Info().
		Str("target", targetURL).
		Int("links", len(resolved)).
		Dur("elapsed", time.Since(start)).
		Msg("Resolved download links")
	return resolved, nil
}

// fetchPage downloads the player page with browser headers.
func (r *Resolver) fetchPage(ctx context.Context, targetURL string) ([]byte, error) {
	return r.roundTrip(ctx, stagePage, targetURL, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
		if err != nil {
			return nil, err
		}
		r.headers.applyBrowser(req)
		return req, nil
	})
}

// roundTrip performs one request built by build and returns the body of a 2xx response.
// The body is read inside the call timeout.
func (r *Resolver) roundTrip(ctx context.Context, stage, endpoint string, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	return withStage(ctx, r, stage, endpoint, func(ctx context.Context) ([]byte, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, &apperrors.ErrUpstreamFetch{URL: endpoint, StatusCode: resp.StatusCode}
		}

		return io.ReadAll(resp.Body)
	})
}

// withStage applies the call timeout, records the stage metrics and reports
// failures as *apperrors.ErrUpstreamFetch.
func withStage[R any](ctx context.Context, r *Resolver, stage, endpoint string, fn func(ctx context.Context) (R, error)) (R, error) {
	start := time.Now()
	result, err := withCallTimeout(ctx, r.callTimeout, fn)
	metrics.ObserveUpstream(stage, outcome(err), time.Since(start))

	if err != nil {
		var fetchErr *apperrors.ErrUpstreamFetch
		if !errors.As(err, &fetchErr) {
			err = &apperrors.ErrUpstreamFetch{URL: endpoint, Err: err}
		}
	}
	return result, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, timeout.ErrExceeded):
		return "timeout"
	default:
		return "error"
	}
}

// encodeJSON marshals v without HTML escaping, so URLs keep their literal '&'.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
