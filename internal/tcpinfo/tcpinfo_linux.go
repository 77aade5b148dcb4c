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

//go:build linux

package tcpinfo

import (
	"crypto/tls"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/DennySORA/httpulse/internal/metrics"
)

// read queries TCP_INFO on conn's underlying socket. An HTTPS probe
// hands us the *tls.Conn the transport used, so unwrap it first.
// Returns nil on any failure — this must never block or panic, since
// it runs on the hot probe path.
func read(conn any) *metrics.TcpInfoSnapshot {
	if tlsConn, ok := conn.(*tls.Conn); ok {
		conn = tlsConn.NetConn()
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	raw, err := tcpConn.SyscallConn()
	if err != nil {
		return nil
	}

	var info *unix.TCPInfo
	var getErr error
	ctrlErr := raw.Control(func(fd uintptr) {
		info, getErr = unix.GetsockoptTCPInfo(int(fd), syscall.SOL_TCP, syscall.TCP_INFO)
	})
	if ctrlErr != nil || getErr != nil || info == nil {
		return nil
	}

	return &metrics.TcpInfoSnapshot{
		RttUs:        u32(info.Rtt),
		RttVarUs:     u32(info.Rttvar),
		TotalRetrans: u32(info.Total_retrans),
		Lost:         u32(info.Lost),
		Reordering:   u32(info.Reordering),
		SndCwnd:      u32(info.Snd_cwnd),
		SndSsthresh:  u32(info.Snd_ssthresh),
	}
}
