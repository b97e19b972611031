package client

import (
	"bufio"
	"context"
	"crypto/x509"
	"io"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
)

// chromeTransport performs the TLS handshake with a Chrome ClientHello, for mirrors
// behind bot protection that fingerprints Go's TLS stack. Plain HTTP goes to fallback.
type chromeTransport struct {
	dialer   proxy.ContextDialer
	h2       *http2.Transport
	fallback http.RoundTripper
	// rootCAs verifies server certificates; nil uses the system roots.
	rootCAs *x509.CertPool
}

func newChromeTransport(dialer proxy.ContextDialer, fallback http.RoundTripper) *chromeTransport {
	return &chromeTransport{
		dialer:   dialer,
		h2:       &http2.Transport{},
		fallback: fallback,
	}
}

// RoundTrip uses one connection per request. The connection is bound to the request
// context: its deadline becomes the connection deadline and cancellation closes it.
func (t *chromeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return t.fallback.RoundTrip(req)
	}

	ctx := req.Context()
	addr := req.URL.Host
	if req.URL.Port() == "" {
		addr = net.JoinHostPort(req.URL.Hostname(), "443")
	}

	conn, err := t.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	fail := func(err error) (*http.Response, error) {
		stop()
		_ = conn.Close()
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{ServerName: req.URL.Hostname(), RootCAs: t.rootCAs}, utls.HelloChrome_Auto)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return fail(err)
	}

	if tlsConn.ConnectionState().NegotiatedProtocol == http2.NextProtoTLS {
		h2Conn, err := t.h2.NewClientConn(tlsConn)
		if err != nil {
			return fail(err)
		}
		resp, err := h2Conn.RoundTrip(req)
		if err != nil {
			_ = h2Conn.Close()
			return fail(err)
		}
		resp.Body = &connClosingBody{ReadCloser: resp.Body, conn: h2Conn, stop: stop}
		return resp, nil
	}

	if err := req.Write(tlsConn); err != nil {
		return fail(err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(tlsConn), req)
	if err != nil {
		return fail(err)
	}
	resp.Body = &connClosingBody{ReadCloser: resp.Body, conn: tlsConn, stop: stop}
	return resp, nil
}

// connClosingBody closes the underlying connection together with the body.
type connClosingBody struct {
	io.ReadCloser
	conn io.Closer
	stop func() bool
}

func (b *connClosingBody) Close() error {
	b.stop()
	err := b.ReadCloser.Close()
	_ = b.conn.Close()
	return err
}

// contextDialer adapts a plain proxy.Dialer to proxy.ContextDialer.
type contextDialer struct {
	proxy.Dialer
}

func (d contextDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	return d.Dial(network, addr)
}
