package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	fitgate "github.com/fittrack/fitgate"
)

type metricsSource interface {
	MetricsSnapshot() fitgate.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	ID   fitgate.MetricID
	Name string
	Help string
}

type histogramDef struct {
	ID   fitgate.MetricID
	Name string
	Help string
}

var counterDefs = []counterDef{
	{ID: fitgate.MetricRequestSuccess, Name: "fitgate_request_success_total", Help: "Requests that terminated in a 2xx response."},
	{ID: fitgate.MetricRequestRejected, Name: "fitgate_request_rejected_total", Help: "Requests rejected with a non-2xx business response."},
	{ID: fitgate.MetricNetworkError, Name: "fitgate_network_error_total", Help: "Requests lost to transport failures."},
	{ID: fitgate.MetricRefreshSuccess, Name: "fitgate_refresh_success_total", Help: "Token refreshes that minted a new access token."},
	{ID: fitgate.MetricRefreshFailure, Name: "fitgate_refresh_failure_total", Help: "Token refreshes rejected by the backend or lost to the network."},
	{ID: fitgate.MetricRefreshCoalesced, Name: "fitgate_refresh_coalesced_total", Help: "Unauthorized requests that reused a concurrently refreshed token."},
	{ID: fitgate.MetricAuthExpired, Name: "fitgate_auth_expired_total", Help: "Requests that terminated the session as expired."},
	{ID: fitgate.MetricLoginSuccess, Name: "fitgate_login_success_total", Help: "Successful logins and registrations."},
	{ID: fitgate.MetricLoginFailure, Name: "fitgate_login_failure_total", Help: "Rejected logins and registrations."},
	{ID: fitgate.MetricLogout, Name: "fitgate_logout_total", Help: "Logout operations."},
	{ID: fitgate.MetricSessionRestored, Name: "fitgate_session_restored_total", Help: "Startup restores that found a usable session."},
	{ID: fitgate.MetricSessionCleared, Name: "fitgate_session_cleared_total", Help: "Session clears from any cause."},
}

var histogramDefs = []histogramDef{
	{ID: fitgate.MetricRequestLatency, Name: "fitgate_request_latency_seconds", Help: "Request round-trip latency histogram."},
}

var histogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// Exporter renders fitgate metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter that reads from the given [fitgate.Client].
func NewExporter(client *fitgate.Client) *Exporter {
	return &Exporter{source: client}
}

// NewExporterFromSource creates an exporter from a custom metrics source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the current metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render writes the current metrics in Prometheus text exposition format.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.Name, def.Help, snapshot.Counters[def.ID])
	}

	for _, def := range histogramDefs {
		buckets, ok := snapshot.Histograms[def.ID]
		if !ok {
			continue
		}
		writeHistogram(&b, def.Name, def.Help, cumulative(buckets))
	}

	writeCounter(&b, "fitgate_audit_dropped_total", "Audit events dropped under dispatcher backpressure.", dropped)

	return b.String()
}

func cumulative(raw []uint64) []uint64 {
	out := make([]uint64, len(histogramBounds))
	var running uint64
	for i := range out {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, help string, buckets []uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" histogram\n")

	for i, le := range histogramBounds {
		b.WriteString(name)
		b.WriteString("_bucket{le=\"")
		b.WriteString(le)
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(buckets[i], 10))
		b.WriteByte('\n')
	}

	count := buckets[len(buckets)-1]
	b.WriteString(name)
	b.WriteString("_count ")
	b.WriteString(strconv.FormatUint(count, 10))
	b.WriteByte('\n')

	// Durations are bucketed without an exact sum; keep the field stable.
	b.WriteString(name)
	b.WriteString("_sum 0\n")
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
