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

package probe

import (
	"context"
	"crypto/tls"
	"net/http"
	"strings"
	"sync"
	"time"
)

// tls13ProbeURL is a well-known endpoint that has supported TLS 1.3
// since its general availability; used only to exercise a disposable
// client, never logged or surfaced to the user.
const tls13ProbeURL = "https://www.cloudflare.com"

var (
	tls13Once   sync.Once
	tls13Result bool
)

// DetectTLS13Support is a process-wide one-shot check of whether this
// runtime's TLS stack and network path can complete a TLS 1.3
// handshake. The result never changes after the first call.
func DetectTLS13Support() bool {
	tls13Once.Do(func() {
		tls13Result = detectTLS13Support()
	})
	return tls13Result
}

func detectTLS13Support() bool {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS13,
			MaxVersion: tls.VersionTLS13,
		},
	}
	client := &http.Client{
		Transport: transport,
		Timeout:   3 * time.Second,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, tls13ProbeURL, nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err == nil {
		resp.Body.Close()
		return true
	}

	low := strings.ToLower(err.Error())
	if strings.Contains(low, "ssl") || strings.Contains(low, "tls") || strings.Contains(low, "handshake") || strings.Contains(low, "protocol") {
		return false
	}

	// Timeouts and other network failures are treated as "no support" to
	// avoid configuring probes that would always fail at runtime.
	return false
}
