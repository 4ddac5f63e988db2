// Package audit defines the client's audit event model, the sinks that
// receive emitted events, and the asynchronous [Dispatcher] that decouples
// emission from sink latency.
//
// # Architecture boundaries
//
// This package owns the [Event] shape, sink implementations, and dispatch
// buffering. The root package decides which events exist and when they are
// emitted; it feeds a single [Sink] through one [Dispatcher].
//
// # What this package must NOT do
//
//   - Import fitgate or any sibling package.
//   - Perform network I/O beyond what a caller-supplied io.Writer does.
package audit
