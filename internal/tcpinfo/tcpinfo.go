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

// Package tcpinfo reads kernel TCP connection state: a best-effort,
// never-blocking snapshot of the socket a probe attempt just used.
// Platform-specific retrieval lives in tcpinfo_linux.go; every other
// platform gets the stub in tcpinfo_other.go.
package tcpinfo

import "github.com/DennySORA/httpulse/internal/metrics"

// Reader retrieves a TcpInfoSnapshot for a just-used connection.
type Reader interface {
	Read(conn any) *metrics.TcpInfoSnapshot
}

// Default is the process-wide reader, platform-selected at compile time.
var Default Reader = defaultReader{}

type defaultReader struct{}

func (defaultReader) Read(conn any) *metrics.TcpInfoSnapshot {
	return read(conn)
}

func u32(v uint32) *uint32 { return &v }
