// Package session owns the client's authentication state: the access token,
// the refresh token, and the cached user profile, together with their
// persistence to a durable key-value [Keyring].
//
// # Consistency model
//
// In-memory state is the single source of truth for the lifetime of the
// process. Mutations apply to memory first, atomically under one lock, and
// only then issue durable writes; a concurrent reader observes either the
// fully-old or the fully-new (access token, refresh token, user) triple,
// never a mix. Durable-layer failures are reported to the caller but never
// roll back the in-memory change.
//
// # Architecture boundaries
//
// This package owns the [Store] and the persisted [User] model. It does NOT
// issue network calls, decide when tokens are refreshed, or validate token
// signatures — those responsibilities belong to the Client.
//
// # What this package must NOT do
//
//   - Import fitgate or internal/flows (no upward imports).
//   - Perform HTTP I/O.
//   - Treat a durable-storage failure as fatal for in-memory state.
package session
