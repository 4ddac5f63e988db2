// Package fitgate is a Go client for the fitness-tracking REST backend. It
// owns the session/auth-token lifecycle — acquisition, durable storage,
// bearer attachment, expiry detection, and a single transparent
// refresh-and-retry on an unauthorized response — and exposes typed resource
// endpoints (profile, workouts, nutrition, goals) on top of that gateway.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
// Concurrent unauthorized responses coalesce into at most one refresh call.
//
// # Architecture boundaries
//
// fitgate is the public surface. It exposes [Client], [Builder], [Config],
// the error taxonomy, and value types. Wire-protocol orchestration lives in
// internal/flows, session state in the session package, and derived body
// metrics in the health package.
//
// # What this package must NOT do
//
//   - Pre-empt the backend's authorization decisions: a call without a local
//     token is still issued and the backend's verdict surfaced.
//   - Retry beyond the single refresh-and-resend cycle per call.
//   - Mutate session storage anywhere but through the session.Store.
package fitgate
