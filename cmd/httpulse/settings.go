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

// Package main's settings.go turns parsed CLI flags into AppSettings
//, mirroring original_source/src/settings/mod.rs's
// from_args: reject a zero refresh rate, fall back to one implicit
// default target when none is given, and collapse any unrecognized
// --ebpf value to "off" rather than erroring.
package main

import (
	"strings"

	"github.com/DennySORA/httpulse/internal/errs"
)

var errCodes = map[errs.CodeError]string{
	errs.MinPkgCLI + 0: "cli: refresh-hz must be greater than zero",
}

const ErrInvalidRefreshHz errs.CodeError = errs.MinPkgCLI + 0

func init() {
	errs.RegisterMessages(errCodes)
}

// defaultTarget is added when no --target flag is given at all, the
// same single-implicit-target fallback the original CLI uses.
const defaultTarget = "https://google.com"

// EbpfMode is the closed set --ebpf collapses to.
type EbpfMode string

const (
	EbpfOff     EbpfMode = "off"
	EbpfMinimal EbpfMode = "minimal"
	EbpfFull    EbpfMode = "full"
)

// ParseEbpfMode collapses any unrecognized value to EbpfOff rather than
// erroring.
func ParseEbpfMode(raw string) EbpfMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "minimal":
		return EbpfMinimal
	case "full":
		return EbpfFull
	default:
		return EbpfOff
	}
}

// AppSettings is the fully-validated result of parsing CLI flags.
type AppSettings struct {
	Targets   []string
	RefreshHz uint16
	EbpfMode  EbpfMode
}

// settingsFromFlags validates and normalizes raw flag values into
// AppSettings. A zero refresh rate is the one flag-level error this CLI
// contract defines; everything else has a total fallback.
func settingsFromFlags(targets []string, refreshHz uint16, ebpf string) (AppSettings, errs.Error) {
	if refreshHz == 0 {
		return AppSettings{}, errs.Wrapf(ErrInvalidRefreshHz, nil, "refresh-hz=%d", refreshHz)
	}

	out := make([]string, len(targets))
	copy(out, targets)
	if len(out) == 0 {
		out = []string{defaultTarget}
	}

	return AppSettings{
		Targets:   out,
		RefreshHz: refreshHz,
		EbpfMode:  ParseEbpfMode(ebpf),
	}, nil
}
