package client

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nontonanime/api/internal/config"
)

// newTransport assembles the round tripper shared by page fetches and the resolver:
// optional proxy, optional Chrome TLS fingerprint, then transparent decompression.
func newTransport(cfg *config.Config) http.RoundTripper {
	logger := config.GetLogger()

	// Clone DefaultTransport to keep its pooling, timeouts and HTTP/2 support.
	base := http.DefaultTransport.(*http.Transport).Clone()
	dialer := proxy.ContextDialer(&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second})
	viaHTTPProxy := false

	if cfg.ProxyConnectionString != "" {
		proxyDialer, proxyURL, err := parseProxy(cfg.ProxyConnectionString)
		switch {
		case err != nil:
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy, continuing without proxy")
		case proxyDialer != nil:
			dialer = proxyDialer
			base.Proxy = nil
			base.DialContext = proxyDialer.DialContext
			logger.Info().Str("scheme", proxyURL.Scheme).Str("host", proxyURL.Host).Msg("Routing upstream traffic through SOCKS proxy")
		default:
			base.Proxy = http.ProxyURL(proxyURL)
			viaHTTPProxy = true
			logger.Info().Str("scheme", proxyURL.Scheme).Str("host", proxyURL.Host).Msg("Routing upstream traffic through HTTP proxy")
		}
	}

	var rt http.RoundTripper = base
	if cfg.TLSFingerprint {
		if viaHTTPProxy {
			logger.Warn().Msg("TLS fingerprinting is not available through an HTTP proxy, using the standard TLS stack")
		} else {
			rt = newChromeTransport(dialer, base)
			logger.Info().Msg("Using Chrome TLS fingerprint for HTTPS requests")
		}
	}

	return newDecompressTransport(rt)
}

// parseProxy returns a dialer for socks5 proxies, or only the URL for http(s) proxies.
func parseProxy(raw string) (proxy.ContextDialer, *url.URL, error) {
	proxyURL, err := url.Parse(raw)
	if err != nil {
		return nil, nil, err
	}

	switch proxyURL.Scheme {
	case "http", "https":
		return nil, proxyURL, nil
	case "socks5", "socks5h":
		d, err := proxy.FromURL(proxyURL, proxy.Direct)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		if cd, ok := d.(proxy.ContextDialer); ok {
			return cd, proxyURL, nil
		}
		return contextDialer{Dialer: d}, proxyURL, nil
	default:
		return nil, nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
}
