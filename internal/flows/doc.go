// Package flows contains pure-function orchestrators for the client's wire
// protocol: the authenticated send state machine and the token-refresh call.
//
// Each flow function accepts a typed dependency struct and returns a result
// value without side-effects beyond those dependencies. This keeps the
// refresh-once invariant an explicit, unit-testable property rather than
// closure-captured retry logic.
//
// # Architecture boundaries
//
// Flow functions coordinate the HTTP client and the session store but own
// neither — ownership stays with the Client.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import fitgate (to avoid import cycles).
//   - Retry beyond the single refresh-and-resend cycle.
package flows
