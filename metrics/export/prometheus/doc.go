// Package prometheus renders fitgate metrics in Prometheus text exposition
// format.
//
// [NewExporter] accepts a [fitgate.Client] and exposes an [http.Handler] that
// renders all fitgate counters and histograms. Counter names are prefixed
// fitgate_*_total; the single histogram is fitgate_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate client state.
package prometheus
