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

package classify_test

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DennySORA/httpulse/internal/classify"
	"github.com/DennySORA/httpulse/internal/metrics"
)

func TestClassifyUnresolvedHost(t *testing.T) {
	err := &net.DNSError{Err: "no such host", Name: "example.invalid", IsNotFound: true}
	got := classify.Classify(err)
	assert.Equal(t, metrics.DnsOther, got.Kind)
}

func TestClassifyOperationTimedOut(t *testing.T) {
	got := classify.Classify(errors.New("Get \"https://x\": operation timed out"))
	assert.Equal(t, metrics.HttpTimeout, got.Kind)
}

func TestClassifyCouldNotConnect(t *testing.T) {
	got := classify.Classify(errors.New("dial tcp 10.0.0.1:443: connection refused"))
	assert.Equal(t, metrics.ConnectOther, got.Kind)
}

func TestClassifyTLSVersionMismatchTakesPriorityOverGenericTLS(t *testing.T) {
	got := classify.Classify(errors.New("tls: unsupported protocol version"))
	assert.Equal(t, metrics.TlsVersionMismatch, got.Kind)
}

func TestClassifyGenericTLSHandshakeFailure(t *testing.T) {
	got := classify.Classify(errors.New("tls: handshake failure: certificate signed by unknown authority"))
	assert.Equal(t, metrics.TlsHandshakeFailed, got.Kind)
}

func TestClassifyReadError(t *testing.T) {
	got := classify.Classify(errors.New("unexpected read error: connection reset by peer"))
	assert.Equal(t, metrics.ReadTimeout, got.Kind)
}

func TestClassifyDefaultsToIoError(t *testing.T) {
	got := classify.Classify(errors.New("something bizarre happened"))
	assert.Equal(t, metrics.IoError, got.Kind)
}

func TestClassifyNeverReturnsDnsTimeout(t *testing.T) {
	inputs := []error{
		errors.New("resolving timed out"),
		errors.New("operation timed out"),
		errors.New("dial: connection refused"),
	}
	for _, in := range inputs {
		got := classify.Classify(in)
		assert.NotEqual(t, metrics.DnsTimeout, got.Kind, "input %q", in)
	}
}
