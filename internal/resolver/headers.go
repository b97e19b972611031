package resolver

import (
	"net/http"

	"github.com/nontonanime/api/internal/config"
)

// Headers are the identity values sent with every request of the pipeline.
// They are injected so tests can use deterministic values.
type Headers struct {
	UserAgent   string
	Fingerprint string
	Origin      string // source site base URL as the player page would send it
}

// HeadersFromConfig builds Headers from the loaded configuration.
func HeadersFromConfig(cfg *config.Config) Headers {
	return Headers{
		UserAgent:   cfg.UserAgent,
		Fingerprint: cfg.Fingerprint,
		Origin:      cfg.Origin,
	}
}

// applyBrowser sets the headers of a plain page navigation.
func (h Headers) applyBrowser(req *http.Request) {
	req.Header.Set("User-Agent", h.UserAgent)
}

// applyAPI sets the headers the resolver host checks on its JSON endpoints.
// The referer is the player page, never the endpoint itself.
func (h Headers) applyAPI(req *http.Request, referer string) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", h.Origin)
	req.Header.Set("Referer", referer)
	req.Header.Set("X-Fingerprint", h.Fingerprint)
	req.Header.Set("User-Agent", h.UserAgent)
}
