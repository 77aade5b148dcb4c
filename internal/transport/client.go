/*
 * MIT License
 *
 * Copyright (c) 2026 DennySORA
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package transport builds the net/http client and transport a probe
// attempt runs over, pinning HTTP version, TLS version, connection
// reuse, and DNS-override behavior per a ProfileConfig/TargetConfig
// pair. It exposes one narrow capability — Perform over a Config,
// yielding an Outcome plus phase Timestamps — so the probe client can be
// driven against a fake implementation in tests without touching the
// network.
package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http2"

	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
)

// Config bundles everything Perform needs to run one probe attempt.
type Config struct {
	URL            string
	Method         profile.Method
	HTTP           profile.HTTPVersion
	TLS            int // crypto/tls version constant
	ConnReuse      profile.ConnReuse
	MaxReadBytes   int64
	Headers        []profile.Header
	TimeoutTotal   time.Duration
	ConnectTimeout time.Duration // 0 means "no separate connect timeout"
	DNSEnabled     bool
	ResolvedIP     string // used only when !DNSEnabled and host is not already an IP
	ForceIPv4Only  bool   // DNS-timeout retry path
}

// Timestamps holds the cumulative transfer checkpoints (name lookup,
// connect, TLS handshake, first byte, done) phase durations are derived
// from.
type Timestamps struct {
	Start       time.Time
	DNSDone     *time.Time
	ConnectDone time.Time
	TLSDone     *time.Time
	FirstByte   time.Time
	Done        time.Time
}

// Outcome is what one Perform call produces.
type Outcome struct {
	HttpStatus   *uint16
	Protocol     metrics.NegotiatedProtocol
	Downloaded   int64
	LocalAddr    *string
	RemoteAddr   *string
	LimitReached bool
	Conn         net.Conn
	Err          error
}

// HttpTransport is the narrow capability probe.go drives — real network
// traffic in production, a deterministic fake in tests.
type HttpTransport interface {
	Perform(ctx context.Context, cfg Config) (Outcome, Timestamps)
}

// Client is the production HttpTransport, backed by net/http. A warm
// profile's connection pool lives on the cached *http.Transport across
// Perform calls, which is what makes warm reuse actually reuse; a cold
// profile gets a fresh transport per call with keep-alives disabled. A
// Client is owned by exactly one worker goroutine, so no locking is
// needed here.
type Client struct {
	cached    *http.Transport
	cachedKey string
	dialed    net.Conn
}

// NewClient returns the production transport.
func NewClient() *Client { return &Client{} }

func (c *Client) Perform(ctx context.Context, cfg Config) (Outcome, Timestamps) {
	start := time.Now()
	var ts Timestamps
	ts.Start = start

	c.dialed = nil
	rt := c.roundTripper(cfg)

	client := &http.Client{
		Transport: rt,
		Timeout:   cfg.TimeoutTotal,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	method := "HEAD"
	if cfg.Method == profile.MethodGet {
		method = "GET"
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, nil)
	if err != nil {
		ts.Done = time.Now()
		ts.ConnectDone = ts.Done
		ts.FirstByte = ts.Done
		return Outcome{Err: fmt.Errorf("could not connect: building request: %w", err)}, ts
	}
	for _, h := range cfg.Headers {
		req.Header.Set(h.Name, h.Value.Expose())
	}

	var usedConn net.Conn
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			usedConn = info.Conn
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			t := time.Now()
			ts.DNSDone = &t
		},
		ConnectDone: func(network, addr string, err error) {
			ts.ConnectDone = time.Now()
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			t := time.Now()
			ts.TLSDone = &t
		},
		GotFirstResponseByte: func() {
			ts.FirstByte = time.Now()
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	resp, err := client.Do(req)
	if ts.ConnectDone.IsZero() {
		ts.ConnectDone = time.Now()
	}

	// A reused pooled connection never re-dials, so GotConn is the
	// authoritative capture; the dial-time capture covers transports
	// that fail before GotConn fires.
	conn := usedConn
	if conn == nil {
		conn = c.dialed
	}

	if err != nil {
		ts.Done = time.Now()
		if ts.FirstByte.IsZero() {
			ts.FirstByte = ts.Done
		}
		if cfg.ConnReuse == profile.Cold {
			rt.CloseIdleConnections()
		}
		return Outcome{Err: err, Conn: conn}, ts
	}
	defer resp.Body.Close()

	if ts.FirstByte.IsZero() {
		ts.FirstByte = time.Now()
	}

	out := Outcome{Conn: conn}
	status := uint16(resp.StatusCode)
	out.HttpStatus = &status
	out.Protocol = negotiatedProtocol(resp.Proto)

	if local := connLocalAddr(conn); local != "" {
		out.LocalAddr = &local
	}
	if remote := connRemoteAddr(conn); remote != "" {
		out.RemoteAddr = &remote
	}

	downloaded, limitReached, readErr := readCapped(resp.Body, cfg.MaxReadBytes)
	out.Downloaded = downloaded
	out.LimitReached = limitReached
	ts.Done = time.Now()

	if readErr != nil && !limitReached {
		out.Err = fmt.Errorf("read error: %w", readErr)
	}

	if cfg.ConnReuse == profile.Cold {
		rt.CloseIdleConnections()
	}

	return out, ts
}

// roundTripper returns the *http.Transport for cfg: the cached warm
// transport when the transport-shaping fields are unchanged, a fresh
// one otherwise. Cold always builds fresh with keep-alives disabled so
// no connection outlives its probe.
func (c *Client) roundTripper(cfg Config) *http.Transport {
	key := transportKey(cfg)
	if cfg.ConnReuse == profile.Warm && c.cached != nil && c.cachedKey == key {
		return c.cached
	}

	dialer := &net.Dialer{}
	if cfg.ConnectTimeout > 0 {
		dialer.Timeout = cfg.ConnectTimeout
	}
	resolvedIP := cfg.ResolvedIP
	forceIPv4 := cfg.ForceIPv4Only

	rt := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if forceIPv4 {
				network = "tcp4"
			}
			if resolvedIP != "" {
				if host, port, err := net.SplitHostPort(addr); err == nil && net.ParseIP(host) == nil {
					addr = net.JoinHostPort(resolvedIP, port)
				}
			}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err == nil {
				c.dialed = conn
			}
			return conn, err
		},
		DisableKeepAlives:  cfg.ConnReuse == profile.Cold,
		DisableCompression: true,
		ForceAttemptHTTP2:  false,
		TLSClientConfig: &tls.Config{
			MinVersion: uint16(cfg.TLS),
			MaxVersion: uint16(cfg.TLS),
		},
	}

	switch cfg.HTTP {
	case profile.HTTP2:
		rt.TLSClientConfig.NextProtos = []string{"h2"}
		_ = http2.ConfigureTransport(rt)
	default:
		// Non-nil empty map disables the automatic HTTP/2 upgrade so an
		// H1 profile cannot silently negotiate h2 over TLS ALPN.
		rt.TLSNextProto = map[string]func(authority string, c *tls.Conn) http.RoundTripper{}
	}

	if cfg.ConnReuse == profile.Warm {
		if c.cached != nil {
			c.cached.CloseIdleConnections()
		}
		c.cached = rt
		c.cachedKey = key
	}
	return rt
}

// transportKey captures every Config field that shapes the transport
// itself (as opposed to the per-request fields like method or headers).
// A live reconfig that changes any of these invalidates the warm pool.
func transportKey(cfg Config) string {
	return fmt.Sprintf("%d|%d|%d|%d|%t|%s",
		cfg.HTTP, cfg.TLS, cfg.ConnReuse, cfg.ConnectTimeout, cfg.ForceIPv4Only, cfg.ResolvedIP)
}

// readCapped reads up to maxBytes from r, reporting how much was read and
// whether the cap was hit. maxBytes
// <= 0 means "read nothing" (the HEAD case).
func readCapped(r io.Reader, maxBytes int64) (int64, bool, error) {
	if maxBytes <= 0 {
		return 0, false, nil
	}

	buf := bufio.NewReader(io.LimitReader(r, maxBytes+1))
	var n int64
	tmp := make([]byte, 32*1024)
	for {
		read, err := buf.Read(tmp)
		n += int64(read)
		if n > maxBytes {
			return maxBytes, true, nil
		}
		if err == io.EOF {
			return n, false, nil
		}
		if err != nil {
			return n, false, err
		}
	}
}

func negotiatedProtocol(proto string) metrics.NegotiatedProtocol {
	p := strings.ToLower(proto)
	var alpn string
	switch {
	case strings.Contains(p, "2"):
		alpn = "h2"
	case strings.Contains(p, "1.0"):
		alpn = "http/1.0"
	default:
		alpn = "http/1.1"
	}
	return metrics.NegotiatedProtocol{ALPN: &alpn}
}

func connLocalAddr(c net.Conn) string {
	if c == nil {
		return ""
	}
	return c.LocalAddr().String()
}

func connRemoteAddr(c net.Conn) string {
	if c == nil {
		return ""
	}
	return c.RemoteAddr().String()
}

// IsLiteralIP reports whether rawurl's host is already an IPv4/IPv6
// literal.
func IsLiteralIP(rawurl string) bool {
	u, err := url.Parse(rawurl)
	if err != nil {
		return false
	}
	return net.ParseIP(u.Hostname()) != nil
}
