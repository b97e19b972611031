package client

import (
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// acceptEncoding is what Chrome advertises; the upstream CDNs pick brotli or zstd for it.
const acceptEncoding = "gzip, deflate, br, zstd"

type decoder func(io.Reader) (io.ReadCloser, error)

var decoders = map[string]decoder{
	"gzip":   func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
	"x-gzip": func(r io.Reader) (io.ReadCloser, error) { return gzip.NewReader(r) },
	"deflate": func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	},
	"br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	"zstd": func(r io.Reader) (io.ReadCloser, error) {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	},
}

// decompressTransport advertises browser encodings and decodes the response body,
// so parsers always see the identity representation.
type decompressTransport struct {
	next http.RoundTripper
}

func newDecompressTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &decompressTransport{next: next}
}

func (t *decompressTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	codings := contentCodings(resp.Header.Get("Content-Encoding"))
	if len(codings) == 0 {
		return resp, nil
	}
	for _, coding := range codings {
		if _, ok := decoders[coding]; !ok {
			return resp, nil
		}
	}

	body, err := decodeLayers(resp.Body, codings)
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}

	resp.Body = body
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return resp, nil
}

// decodeLayers undoes codings in reverse order of application.
func decodeLayers(body io.ReadCloser, codings []string) (io.ReadCloser, error) {
	layered := &layeredBody{closers: []io.Closer{body}}
	var current io.Reader = body
	for i := len(codings) - 1; i >= 0; i-- {
		rc, err := decoders[codings[i]](current)
		if err != nil {
			_ = layered.closeDecoders()
			return nil, err
		}
		layered.closers = append(layered.closers, rc)
		current = rc
	}
	layered.Reader = current
	return layered, nil
}

// layeredBody reads from the innermost decoder and closes every layer, the network body last.
type layeredBody struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredBody) closeDecoders() error {
	var first error
	for i := len(l.closers) - 1; i >= 1; i-- {
		if err := l.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (l *layeredBody) Close() error {
	err := l.closeDecoders()
	if bodyErr := l.closers[0].Close(); err == nil {
		err = bodyErr
	}
	return err
}

// contentCodings lists the codings of a Content-Encoding header in application order, lower-cased, without identity.
func contentCodings(header string) []string {
	var codings []string
	for _, part := range strings.Split(header, ",") {
		coding := strings.ToLower(strings.TrimSpace(part))
		if coding == "" || coding == "identity" {
			continue
		}
		codings = append(codings, coding)
	}
	return codings
}
