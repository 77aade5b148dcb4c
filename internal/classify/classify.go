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

// Package classify maps a transport-reported error into the closed
// ProbeErrorKind taxonomy.
package classify

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"strings"

	"github.com/DennySORA/httpulse/internal/metrics"
)

// Classify maps err onto a ProbeErrorKind using a fixed, first-match
// priority chain. It never returns DnsTimeout — that
// kind is assigned directly by the probe client's retry path, not by the
// classifier.
func Classify(err error) metrics.ProbeError {
	if err == nil {
		return metrics.ProbeError{Kind: metrics.IoError, Message: "nil error classified"}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || strings.Contains(lower, "no such host") || strings.Contains(lower, "server misbehaving") || strings.Contains(lower, "unresolved host") {
		return metrics.ProbeError{Kind: metrics.DnsOther, Message: msg}
	}

	var netErr net.Error
	if (errors.As(err, &netErr) && netErr.Timeout()) ||
		strings.Contains(lower, "operation timed out") ||
		strings.Contains(lower, "context deadline exceeded") ||
		strings.Contains(lower, "client.timeout exceeded") {
		return metrics.ProbeError{Kind: metrics.HttpTimeout, Message: msg}
	}

	var opErr *net.OpError
	if (errors.As(err, &opErr) && opErr.Op == "dial") ||
		strings.Contains(lower, "could not connect") ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no route to host") {
		return metrics.ProbeError{Kind: metrics.ConnectOther, Message: msg}
	}

	if isTLSClassError(err, lower) {
		if metrics.MatchesTLSVersionPattern(msg) {
			return metrics.ProbeError{Kind: metrics.TlsVersionMismatch, Message: msg}
		}
		return metrics.ProbeError{Kind: metrics.TlsHandshakeFailed, Message: msg}
	}

	if strings.Contains(lower, "http status") || strings.Contains(lower, "http-returned") {
		return metrics.ProbeError{Kind: metrics.HttpStatusError, Message: msg}
	}

	if strings.Contains(lower, "read") && (strings.Contains(lower, "error") || strings.Contains(lower, "reset") || strings.Contains(lower, "eof")) {
		return metrics.ProbeError{Kind: metrics.ReadTimeout, Message: msg}
	}

	if metrics.MatchesTLSVersionPattern(msg) {
		return metrics.ProbeError{Kind: metrics.TlsVersionMismatch, Message: msg}
	}

	return metrics.ProbeError{Kind: metrics.IoError, Message: msg}
}

// isTLSClassError recognizes TLS negotiation, certificate, and cipher
// failures both by concrete error type and by message content, since
// some transports surface these only as wrapped strings.
func isTLSClassError(err error, lower string) bool {
	var hdrErr tls.RecordHeaderError
	if errors.As(err, &hdrErr) {
		return true
	}
	var certErr x509.CertificateInvalidError
	if errors.As(err, &certErr) {
		return true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return true
	}
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthErr) {
		return true
	}

	for _, needle := range []string{"tls", "x509", "certificate", "cipher", "handshake"} {
		if strings.Contains(lower, needle) {
			return true
		}
	}
	return false
}
