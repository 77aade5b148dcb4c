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

// Package metrics defines the sample and metric-kind vocabulary shared by
// the probe, aggregate, and state packages, along with the
// bounded store that holds per-(target,profile) sample windows.
package metrics

import (
	"strings"
	"time"

	"github.com/DennySORA/httpulse/internal/ids"
)

// ProbeErrorKind is the closed set of classified probe failures. Ordering mirrors declaration order and is stable for display.
type ProbeErrorKind uint8

const (
	DnsTimeout ProbeErrorKind = iota
	DnsNxDomain
	DnsServFail
	DnsOther
	ConnectTimeout
	ConnectRefused
	ConnectNoRoute
	ConnectOther
	TlsHandshakeFailed
	TlsVersionMismatch
	AlpnFailed
	HttpTimeout
	HttpProtocolError
	HttpStatusError
	ReadTimeout
	IoError
)

var errorLabels = map[ProbeErrorKind]string{
	DnsTimeout:         "DNS timeout",
	DnsNxDomain:        "DNS NXDOMAIN",
	DnsServFail:        "DNS SERVFAIL",
	DnsOther:           "DNS error",
	ConnectTimeout:     "connect timeout",
	ConnectRefused:     "connection refused",
	ConnectNoRoute:     "no route to host",
	ConnectOther:       "connect error",
	TlsHandshakeFailed: "TLS handshake failed",
	TlsVersionMismatch: "TLS version mismatch",
	AlpnFailed:         "ALPN negotiation failed",
	HttpTimeout:        "HTTP timeout",
	HttpProtocolError:  "HTTP protocol error",
	HttpStatusError:    "HTTP status error",
	ReadTimeout:        "read timeout",
	IoError:            "I/O error",
}

// Label returns the short human-readable label for k.
func (k ProbeErrorKind) Label() string {
	if l, ok := errorLabels[k]; ok {
		return l
	}
	return "unknown error"
}

// IsTimeout reports whether k is one of the timeout-class kinds.
func (k ProbeErrorKind) IsTimeout() bool {
	switch k {
	case DnsTimeout, ConnectTimeout, HttpTimeout, ReadTimeout:
		return true
	default:
		return false
	}
}

// MetricKind is the closed set of metrics the aggregator can compute.
type MetricKind uint8

const (
	Dns MetricKind = iota
	Connect
	Tls
	Ttfb
	Download
	Total
	Rtt
	RttVar
	Jitter
	Retrans
	Reordering
	DupAcks
	ProbeLossRate
	TransportLoss
	GoodputBps
	BandwidthUtilization
	Cwnd
	Ssthresh
)

type metricMeta struct {
	label        string
	unit         string
	latencyClass bool
}

var metricTable = map[MetricKind]metricMeta{
	Dns:                  {"DNS", "ms", true},
	Connect:              {"Connect", "ms", true},
	Tls:                  {"TLS", "ms", true},
	Ttfb:                 {"TTFB", "ms", true},
	Download:             {"Download", "ms", true},
	Total:                {"Total", "ms", true},
	Rtt:                  {"RTT", "ms", true},
	RttVar:               {"RTT Var", "ms", true},
	Jitter:               {"Jitter", "ms", true},
	Retrans:              {"Retransmits", "", false},
	Reordering:           {"Reordering", "", false},
	DupAcks:              {"Dup ACKs", "", false},
	ProbeLossRate:        {"Probe Loss Rate", "%", false},
	TransportLoss:        {"Transport Loss", "", false},
	GoodputBps:           {"Goodput", "Mbps", false},
	BandwidthUtilization: {"Bandwidth Utilization", "%", false},
	Cwnd:                 {"Cwnd", "", false},
	Ssthresh:             {"Ssthresh", "", false},
}

func (m MetricKind) Label() string { return metricTable[m].label }
func (m MetricKind) Unit() string  { return metricTable[m].unit }

// IsLatencyMetric reports whether m is percentiled via an HDR histogram
// rather than exact nearest-rank.
func (m MetricKind) IsLatencyMetric() bool { return metricTable[m].latencyClass }

// NegotiatedProtocol describes what the transport reports was actually
// negotiated for a probe attempt. Every field is optional.
type NegotiatedProtocol struct {
	ALPN       *string
	TLSVersion *string
	Cipher     *string
}

// TcpInfoSnapshot is the optional kernel socket-state snapshot C2
// retrieves after a probe completes. Each field is u32 and
// optional.
type TcpInfoSnapshot struct {
	RttUs        *uint32
	RttVarUs     *uint32
	TotalRetrans *uint32
	Lost         *uint32
	Reordering   *uint32
	SndCwnd      *uint32
	SndSsthresh  *uint32
}

// EbpfDelta carries eBPF-sourced deltas when eBPF collection is enabled.
// httpulse always produces a nil *EbpfDelta today.
type EbpfDelta struct {
	Retrans    *uint32
	DupAcks    *uint32
	ConnEvents *uint32
}

// PhaseDurations holds the derived per-phase timings. Values are
// zero when not applicable; TDns/TTls are pointers because they are
// genuinely optional (no DNS phase on an IP target, no TLS phase on a
// plaintext target).
type PhaseDurations struct {
	TDns      *time.Duration
	TConnect  time.Duration
	TTls      *time.Duration
	TTtfb     time.Duration
	TDownload time.Duration
	TTotal    time.Duration
}

// ProbeError is the classified outcome of a failed probe attempt.
type ProbeError struct {
	Kind    ProbeErrorKind
	Message string
}

func (e ProbeError) Error() string {
	if e.Message == "" {
		return e.Kind.Label()
	}
	return e.Kind.Label() + ": " + e.Message
}

// ProbeSample is one completed probe observation. Ok is
// false when Err holds a classified failure.
type ProbeSample struct {
	Ts         time.Time
	TargetId   ids.TargetId
	ProfileId  ids.ProfileId
	Ok         bool
	Err        *ProbeError
	HttpStatus *uint16
	Protocol   NegotiatedProtocol
	Phases     PhaseDurations
	Downloaded int64
	LocalAddr  *string
	RemoteAddr *string
	TcpInfo    *TcpInfoSnapshot
	Ebpf       *EbpfDelta
}

// IsErrorKind reports whether the sample's error, if any, is of kind k.
func (s ProbeSample) IsErrorKind(k ProbeErrorKind) bool {
	return !s.Ok && s.Err != nil && s.Err.Kind == k
}

// matchesTLSVersionPattern is the TLS-version-failure pattern the
// classifier applies.
func matchesTLSVersionPattern(msg string) bool {
	low := strings.ToLower(msg)
	if strings.Contains(low, "ssl_min_max_version") || strings.Contains(low, "unsupported protocol") {
		return true
	}
	if strings.Contains(low, "tls") && (strings.Contains(low, "version") || strings.Contains(low, "unsupported")) {
		return true
	}
	return false
}

// MatchesTLSVersionPattern exposes the pattern match to other packages
// (classify) without duplicating the string rules.
func MatchesTLSVersionPattern(msg string) bool { return matchesTLSVersionPattern(msg) }

// MatchesDNSTimeoutSignature is the "resolving timed out" signature
// match used by the probe retry path.
func MatchesDNSTimeoutSignature(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "resolving timed out")
}
