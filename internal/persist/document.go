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

// Package persist implements the persisted-state schema: a versioned
// JSON document under the user's configuration directory holding global
// config, per-target view state, and UI state. Loading layers
// spf13/viper (so a future on-disk-plus-env-override story costs
// nothing extra) over go-playground/validator/v10 struct validation;
// secret header values round-trip as-is in the JSON
// document but are redacted the moment they are rendered for display
// (internal/secret's String/GoString), never inside this package.
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/DennySORA/httpulse/internal/errs"
	"github.com/DennySORA/httpulse/internal/metrics"
	"github.com/DennySORA/httpulse/internal/profile"
	"github.com/DennySORA/httpulse/internal/secret"
	"github.com/DennySORA/httpulse/internal/tlsver"
)

var errCodes = map[errs.CodeError]string{
	errs.MinPkgPersist + 0: "persist: reading config",
	errs.MinPkgPersist + 1: "persist: decoding document",
	errs.MinPkgPersist + 2: "persist: validating document",
	errs.MinPkgPersist + 3: "persist: writing document",
	errs.MinPkgPersist + 4: "persist: resolving config directory",
}

const (
	ErrRead errs.CodeError = errs.MinPkgPersist + iota
	ErrDecode
	ErrValidate
	ErrWrite
	ErrConfigDir
)

func init() {
	errs.RegisterMessages(errCodes)
}

const CurrentVersion = "1"

// HeaderDTO is one persisted profile header: a name plus a secret value
// that round-trips exactly via JSON (secret.String's MarshalJSON does
// not redact; only display projections do).
type HeaderDTO struct {
	Name  string        `mapstructure:"name" json:"name" validate:"required"`
	Value secret.String `mapstructure:"value" json:"value"`
}

// TargetConfigDTO mirrors profile.TargetConfig in the wire/disk shape.
type TargetConfigDTO struct {
	URL                string         `mapstructure:"url" json:"url" validate:"required"`
	Enabled            bool           `mapstructure:"enabled" json:"enabled"`
	DNSEnabled         bool           `mapstructure:"dns_enabled" json:"dns_enabled"`
	IntervalMs         int64          `mapstructure:"interval_ms" json:"interval_ms" validate:"gt=0"`
	TimeoutTotalMs     int64          `mapstructure:"timeout_total_ms" json:"timeout_total_ms" validate:"gt=0"`
	TimeoutBreakdownMs *PhaseTimeoutsDTO `mapstructure:"timeout_breakdown_ms" json:"timeout_breakdown_ms,omitempty"`
	MaxPointsPerWindow int            `mapstructure:"max_points_per_window" json:"max_points_per_window" validate:"gt=0"`
	LatencyLowMs       float64        `mapstructure:"latency_low_ms" json:"latency_low_ms" validate:"gt=0"`
	LatencyHighMs      float64        `mapstructure:"latency_high_ms" json:"latency_high_ms" validate:"gtfield=LatencyLowMs"`
	Sigfig             int            `mapstructure:"sigfig" json:"sigfig" validate:"gte=1,lte=5"`
}

// PhaseTimeoutsDTO mirrors profile.PhaseTimeouts in milliseconds.
type PhaseTimeoutsDTO struct {
	DNSMs     int64 `mapstructure:"dns_ms" json:"dns_ms"`
	ConnectMs int64 `mapstructure:"connect_ms" json:"connect_ms"`
	TLSMs     int64 `mapstructure:"tls_ms" json:"tls_ms"`
	TTFBMs    int64 `mapstructure:"ttfb_ms" json:"ttfb_ms"`
	ReadMs    int64 `mapstructure:"read_ms" json:"read_ms"`
}

// ProfileConfigDTO mirrors profile.ProfileConfig in the wire/disk shape.
type ProfileConfigDTO struct {
	Name         string      `mapstructure:"name" json:"name"`
	HTTP         string      `mapstructure:"http" json:"http" validate:"oneof=h1 h2"`
	TLS          string      `mapstructure:"tls" json:"tls" validate:"oneof=tls12 tls13"`
	ConnReuse    string      `mapstructure:"conn_reuse" json:"conn_reuse" validate:"oneof=warm cold"`
	Method       string      `mapstructure:"method" json:"method" validate:"oneof=head get"`
	MaxReadBytes int64       `mapstructure:"max_read_bytes" json:"max_read_bytes" validate:"gte=0"`
	Headers      []HeaderDTO `mapstructure:"headers" json:"headers"`
}

// TargetEntry is one element of the persisted "targets" array.
type TargetEntry struct {
	Config          TargetConfigDTO    `mapstructure:"config" json:"config" validate:"required"`
	Profiles        []ProfileConfigDTO `mapstructure:"profiles" json:"profiles" validate:"dive"`
	ViewMode        string             `mapstructure:"view_mode" json:"view_mode" validate:"oneof=single compare"`
	SelectedProfile uint               `mapstructure:"selected_profile" json:"selected_profile"`
	PaneMode        string             `mapstructure:"pane_mode" json:"pane_mode" validate:"oneof=split chart metrics summary"`
	MetricsCategory string             `mapstructure:"metrics_category" json:"metrics_category" validate:"oneof=latency quality reliability throughput tcp"`
}

// GlobalConfig is the persisted "global_config" object.
type GlobalConfig struct {
	UIRefreshHz      uint16   `mapstructure:"ui_refresh_hz" json:"ui_refresh_hz" validate:"gt=0"`
	DefaultWindow    string   `mapstructure:"default_window" json:"default_window" validate:"oneof=1m 5m 15m 60m"`
	Windows          []string `mapstructure:"windows" json:"windows" validate:"dive,oneof=1m 5m 15m 60m"`
	LinkCapacityMbps *float64 `mapstructure:"link_capacity_mbps" json:"link_capacity_mbps,omitempty"`
	EbpfEnabled      bool     `mapstructure:"ebpf_enabled" json:"ebpf_enabled"`
	EbpfMode         string   `mapstructure:"ebpf_mode" json:"ebpf_mode" validate:"oneof=off minimal full"`
}

// UIState is the persisted "ui_state" object.
type UIState struct {
	SelectedTarget  uint     `mapstructure:"selected_target" json:"selected_target"`
	SelectedMetric  string   `mapstructure:"selected_metric" json:"selected_metric"`
	SelectedMetrics []string `mapstructure:"selected_metrics" json:"selected_metrics"`
	Window          string   `mapstructure:"window" json:"window" validate:"oneof=1m 5m 15m 60m"`
}

// Document is the full persisted-state schema.
type Document struct {
	Version      string       `mapstructure:"version" json:"version" validate:"required"`
	GlobalConfig GlobalConfig `mapstructure:"global_config" json:"global_config" validate:"required"`
	Targets      []TargetEntry `mapstructure:"targets" json:"targets" validate:"dive"`
	UIState      UIState      `mapstructure:"ui_state" json:"ui_state"`
}

// DefaultDocument returns a fresh Document with the same defaults
// profile.DefaultTargetConfig implies, and no targets.
func DefaultDocument() Document {
	return Document{
		Version: CurrentVersion,
		GlobalConfig: GlobalConfig{
			UIRefreshHz:   10,
			DefaultWindow: "5m",
			Windows:       []string{"1m", "5m", "15m", "60m"},
			EbpfEnabled:   false,
			EbpfMode:      "off",
		},
		UIState: UIState{Window: "5m", SelectedMetric: "total"},
	}
}

var singleValidator = validator.New()

// DefaultPath returns the default persisted-state file location under
// the user's configuration directory.
func DefaultPath() (string, errs.Error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errs.Wrap(ErrConfigDir, err)
	}
	return filepath.Join(dir, "httpulse", "state.json"), nil
}

// Load reads and validates the persisted document at path using viper
// (so a future env-var overlay is free), returning errs.Error codes for
// every distinct failure mode.
func Load(path string) (*Document, errs.Error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, errs.Wrap(ErrRead, err)
	}

	doc := DefaultDocument()
	if err := v.Unmarshal(&doc, viper.DecodeHook(decodeHooks())); err != nil {
		return nil, errs.Wrap(ErrDecode, err)
	}

	if err := singleValidator.Struct(&doc); err != nil {
		return nil, errs.Wrap(ErrValidate, err)
	}

	return &doc, nil
}

// decodeHooks composes viper's default string-conversion hooks with one
// that rebuilds a secret.String from its on-disk string form —
// mapstructure cannot otherwise decode into the unexported wrapped
// value.
func decodeHooks() mapstructure.DecodeHookFunc {
	secretHook := func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() == reflect.String && to == reflect.TypeOf(secret.String{}) {
			return secret.New(data.(string)), nil
		}
		return data, nil
	}
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		secretHook,
	)
}

// Save validates and writes doc to path as indented JSON, creating
// parent directories as needed.
func Save(path string, doc *Document) errs.Error {
	if err := singleValidator.Struct(doc); err != nil {
		return errs.Wrap(ErrValidate, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(ErrWrite, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Wrap(ErrWrite, err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errs.Wrap(ErrWrite, err)
	}
	return nil
}

// ToDomainTargetConfig converts a TargetConfigDTO into its runtime form.
func ToDomainTargetConfig(dto TargetConfigDTO) profile.TargetConfig {
	tc := profile.TargetConfig{
		URL:                dto.URL,
		Enabled:            dto.Enabled,
		DNSEnabled:         dto.DNSEnabled,
		Interval:           time.Duration(dto.IntervalMs) * time.Millisecond,
		TimeoutTotal:       time.Duration(dto.TimeoutTotalMs) * time.Millisecond,
		MaxPointsPerWindow: dto.MaxPointsPerWindow,
		LatencyLowMs:       dto.LatencyLowMs,
		LatencyHighMs:      dto.LatencyHighMs,
		Sigfig:             dto.Sigfig,
	}
	if dto.TimeoutBreakdownMs != nil {
		tc.TimeoutBreakdown = &profile.PhaseTimeouts{
			DNS:     time.Duration(dto.TimeoutBreakdownMs.DNSMs) * time.Millisecond,
			Connect: time.Duration(dto.TimeoutBreakdownMs.ConnectMs) * time.Millisecond,
			TLS:     time.Duration(dto.TimeoutBreakdownMs.TLSMs) * time.Millisecond,
			TTFB:    time.Duration(dto.TimeoutBreakdownMs.TTFBMs) * time.Millisecond,
			Read:    time.Duration(dto.TimeoutBreakdownMs.ReadMs) * time.Millisecond,
		}
	}
	return tc
}

// FromDomainTargetConfig converts a runtime TargetConfig into its
// persisted form.
func FromDomainTargetConfig(tc profile.TargetConfig) TargetConfigDTO {
	dto := TargetConfigDTO{
		URL:                tc.URL,
		Enabled:            tc.Enabled,
		DNSEnabled:         tc.DNSEnabled,
		IntervalMs:         tc.Interval.Milliseconds(),
		TimeoutTotalMs:     tc.TimeoutTotal.Milliseconds(),
		MaxPointsPerWindow: tc.MaxPointsPerWindow,
		LatencyLowMs:       tc.LatencyLowMs,
		LatencyHighMs:      tc.LatencyHighMs,
		Sigfig:             tc.Sigfig,
	}
	if tc.TimeoutBreakdown != nil {
		dto.TimeoutBreakdownMs = &PhaseTimeoutsDTO{
			DNSMs:     tc.TimeoutBreakdown.DNS.Milliseconds(),
			ConnectMs: tc.TimeoutBreakdown.Connect.Milliseconds(),
			TLSMs:     tc.TimeoutBreakdown.TLS.Milliseconds(),
			TTFBMs:    tc.TimeoutBreakdown.TTFB.Milliseconds(),
			ReadMs:    tc.TimeoutBreakdown.Read.Milliseconds(),
		}
	}
	return dto
}

// ToDomainProfileConfig converts a ProfileConfigDTO into its runtime
// form.
func ToDomainProfileConfig(dto ProfileConfigDTO) profile.ProfileConfig {
	pc := profile.ProfileConfig{
		Name:         dto.Name,
		MaxReadBytes: dto.MaxReadBytes,
	}
	if dto.HTTP == "h2" {
		pc.HTTP = profile.HTTP2
	}
	pc.TLS = tlsver.Parse(dto.TLS)
	if dto.ConnReuse == "cold" {
		pc.ConnReuse = profile.Cold
	}
	if dto.Method == "get" {
		pc.Method = profile.MethodGet
	}
	for _, h := range dto.Headers {
		pc.Headers = append(pc.Headers, profile.Header{Name: h.Name, Value: h.Value})
	}
	return pc
}

// FromDomainProfileConfig converts a runtime ProfileConfig into its
// persisted form.
func FromDomainProfileConfig(pc profile.ProfileConfig) ProfileConfigDTO {
	dto := ProfileConfigDTO{
		Name:         pc.Name,
		HTTP:         pc.HTTP.String(),
		ConnReuse:    pc.ConnReuse.String(),
		Method:       pc.Method.String(),
		MaxReadBytes: pc.MaxReadBytes,
	}
	switch pc.TLS {
	case tlsver.VersionTLS13:
		dto.TLS = "tls13"
	default:
		dto.TLS = "tls12"
	}
	for _, h := range pc.Headers {
		dto.Headers = append(dto.Headers, HeaderDTO{Name: h.Name, Value: h.Value})
	}
	return dto
}

// metricNames gives the UIState's selected metric(s) a stable on-disk
// string form independent of enum ordering.
var metricNames = map[metrics.MetricKind]string{
	metrics.Dns: "dns", metrics.Connect: "connect", metrics.Tls: "tls", metrics.Ttfb: "ttfb",
	metrics.Download: "download", metrics.Total: "total", metrics.Rtt: "rtt", metrics.RttVar: "rttvar",
	metrics.Jitter: "jitter", metrics.Retrans: "retrans", metrics.Reordering: "reordering",
	metrics.DupAcks: "dup_acks", metrics.ProbeLossRate: "probe_loss_rate", metrics.TransportLoss: "transport_loss",
	metrics.GoodputBps: "goodput_bps", metrics.BandwidthUtilization: "bandwidth_utilization",
	metrics.Cwnd: "cwnd", metrics.Ssthresh: "ssthresh",
}

// MetricKindName renders k in its persisted string form.
func MetricKindName(k metrics.MetricKind) string {
	if n, ok := metricNames[k]; ok {
		return n
	}
	return "total"
}

// ParseMetricKindName is the inverse of MetricKindName; an unrecognized
// name falls back to Total the same way an unknown persisted value does
// elsewhere in the schema.
func ParseMetricKindName(name string) metrics.MetricKind {
	for k, n := range metricNames {
		if n == name {
			return k
		}
	}
	return metrics.Total
}
