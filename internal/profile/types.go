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

// Package profile defines the configuration types a target and its
// profiles are probed under, and the small "+"-joined mini-language used
// to describe a profile from a single string.
package profile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DennySORA/httpulse/internal/errs"
	"github.com/DennySORA/httpulse/internal/secret"
	"github.com/DennySORA/httpulse/internal/tlsver"
)

var errCodes = map[errs.CodeError]string{
	errs.MinPkgProfile + 0: "profile spec: unknown token",
	errs.MinPkgProfile + 1: "profile spec: empty input",
	errs.MinPkgProfile + 2: "profile spec: conflicting tokens for the same axis",
	errs.MinPkgProfile + 3: "target config: timeout_breakdown exceeds timeout_total",
	errs.MinPkgProfile + 4: "target config: invalid histogram bounds",
	errs.MinPkgProfile + 5: "target config: invalid url",
}

const (
	ErrUnknownToken errs.CodeError = errs.MinPkgProfile + iota
	ErrEmptySpec
	ErrConflictingTokens
	ErrBreakdownExceedsTotal
	ErrInvalidHistogramBounds
	ErrInvalidURL
)

func init() {
	errs.RegisterMessages(errCodes)
}

// HTTPVersion pins the ALPN/transport httpulse negotiates with.
type HTTPVersion uint8

const (
	HTTP1 HTTPVersion = iota
	HTTP2
)

func (h HTTPVersion) String() string {
	if h == HTTP2 {
		return "h2"
	}
	return "h1"
}

// ConnReuse selects whether a probe may reuse a pooled connection.
type ConnReuse uint8

const (
	Warm ConnReuse = iota
	Cold
)

func (c ConnReuse) String() string {
	if c == Cold {
		return "cold"
	}
	return "warm"
}

// Method is the HTTP method a profile probes with.
type Method uint8

const (
	MethodHead Method = iota
	MethodGet
)

func (m Method) String() string {
	if m == MethodGet {
		return "get"
	}
	return "head"
}

// Header is one ordered, secret-valued request header.
type Header struct {
	Name  string
	Value secret.String
}

// ProfileConfig is one (http, tls, reuse, method, cap) bundle a target
// is probed under.
type ProfileConfig struct {
	Name         string
	HTTP         HTTPVersion
	TLS          tlsver.Version
	ConnReuse    ConnReuse
	Method       Method
	MaxReadBytes int64
	Headers      []Header
}

// EffectiveMaxReadBytes returns the body-read cap for this profile; a
// HEAD probe always reads zero bytes regardless of the configured cap.
func (p ProfileConfig) EffectiveMaxReadBytes() int64 {
	if p.Method == MethodHead {
		return 0
	}
	return p.MaxReadBytes
}

// PhaseTimeouts is the optional per-phase timeout breakdown.
// A nil *PhaseTimeouts on TargetConfig means only TimeoutTotal applies.
type PhaseTimeouts struct {
	DNS     time.Duration
	Connect time.Duration
	TLS     time.Duration
	TTFB    time.Duration
	Read    time.Duration
}

// Sum adds up the configured phase timeouts (zero entries contribute 0).
func (p PhaseTimeouts) Sum() time.Duration {
	return p.DNS + p.Connect + p.TLS + p.TTFB + p.Read
}

// TargetConfig is one probed endpoint.
type TargetConfig struct {
	URL                string
	Enabled            bool
	DNSEnabled         bool
	Interval           time.Duration
	TimeoutTotal       time.Duration
	TimeoutBreakdown   *PhaseTimeouts
	MaxPointsPerWindow int
	LatencyLowMs       float64
	LatencyHighMs      float64
	Sigfig             int
}

// DefaultTargetConfig returns sane defaults mirroring the original's
// config.rs defaults: a 5s interval, 10s total timeout, 500-sample
// windows, and a histogram spanning 1-60000ms at 3 significant figures.
func DefaultTargetConfig(url string) TargetConfig {
	return TargetConfig{
		URL:                url,
		Enabled:            true,
		DNSEnabled:         true,
		Interval:           5 * time.Second,
		TimeoutTotal:       10 * time.Second,
		MaxPointsPerWindow: 500,
		LatencyLowMs:       1,
		LatencyHighMs:      60000,
		Sigfig:             3,
	}
}

// Validate checks the cross-field invariants: a configured phase-timeout
// breakdown must not exceed the total, and histogram bounds must be
// sane.
func (t TargetConfig) Validate() errs.Error {
	if strings.TrimSpace(t.URL) == "" {
		return errs.New(ErrInvalidURL)
	}
	if t.TimeoutBreakdown != nil {
		if sum := t.TimeoutBreakdown.Sum(); sum > t.TimeoutTotal {
			return errs.Wrapf(ErrBreakdownExceedsTotal, nil, "breakdown=%s total=%s", sum, t.TimeoutTotal)
		}
	}
	if t.LatencyLowMs <= 0 || t.LatencyHighMs <= t.LatencyLowMs {
		return errs.Wrapf(ErrInvalidHistogramBounds, nil, "low=%f high=%f", t.LatencyLowMs, t.LatencyHighMs)
	}
	if t.Sigfig < 1 || t.Sigfig > 5 {
		return errs.Wrapf(ErrInvalidHistogramBounds, nil, "sigfig=%d", t.Sigfig)
	}
	return nil
}

// NormalizeURL prefixes a bare "host[:port][/path]" with "https://"
// before parsing; anything already carrying a scheme passes through.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

// ParseSpec parses the "+"-joined profile mini-language, e.g.
// "h1+tls12+cold+head+128". Tokens are case-insensitive and
// order-independent; an unrecognized token is an error; a missing axis
// falls back to the corresponding field of def.
func ParseSpec(spec string, def ProfileConfig) (ProfileConfig, errs.Error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return ProfileConfig{}, errs.New(ErrEmptySpec)
	}

	out := def
	var (
		sawHTTP, sawTLS, sawReuse, sawMethod bool
	)

	for _, tok := range strings.Split(spec, "+") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}

		switch {
		case tok == "h1" || tok == "http1" || tok == "http1.1":
			if sawHTTP {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.HTTP, sawHTTP = HTTP1, true
		case tok == "h2" || tok == "http2":
			if sawHTTP {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.HTTP, sawHTTP = HTTP2, true
		case tok == "tls12" || tok == "tls1.2":
			if sawTLS {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.TLS, sawTLS = tlsver.VersionTLS12, true
		case tok == "tls13" || tok == "tls1.3":
			if sawTLS {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.TLS, sawTLS = tlsver.VersionTLS13, true
		case tok == "warm":
			if sawReuse {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.ConnReuse, sawReuse = Warm, true
		case tok == "cold":
			if sawReuse {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.ConnReuse, sawReuse = Cold, true
		case tok == "head":
			if sawMethod {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.Method, sawMethod = MethodHead, true
		case tok == "get":
			if sawMethod {
				return ProfileConfig{}, errs.New(ErrConflictingTokens)
			}
			out.Method, sawMethod = MethodGet, true
		default:
			if n, err := strconv.ParseInt(tok, 10, 64); err == nil && n >= 0 {
				out.MaxReadBytes = n
				continue
			}
			return ProfileConfig{}, errs.Wrapf(ErrUnknownToken, nil, "token %q", tok)
		}
	}

	out.Name = spec
	return out, nil
}

// String renders a ProfileConfig back into the "+"-joined spec form
// (round-tripping ParseSpec for the axes that matter to it).
func (p ProfileConfig) String() string {
	parts := []string{p.HTTP.String(), strings.ReplaceAll(strings.ToLower(p.TLS.String()), " ", ""), p.ConnReuse.String(), p.Method.String()}
	if p.MaxReadBytes > 0 {
		parts = append(parts, fmt.Sprintf("%d", p.MaxReadBytes))
	}
	return strings.Join(parts, "+")
}
