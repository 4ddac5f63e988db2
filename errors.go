package fitgate

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired is returned when the session could not be kept alive:
	// the refresh attempt failed, or the retried call was rejected again.
	// The session is already cleared when this error reaches the caller.
	ErrAuthExpired = errors.New("authentication expired")
	// ErrClientNotReady is returned when a Client method is called before
	// [Builder.Build] produced the instance.
	ErrClientNotReady = errors.New("client not initialized")
)

// NetworkError reports a transport-level failure: timeout, connection
// refused, DNS. The request was not answered by the backend and no session
// state was mutated.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fitgate: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RequestError reports a non-2xx backend response other than a recoverable
// auth expiry. The payload is the backend's error body, unmodified; the
// gateway does not interpret business-level errors.
type RequestError struct {
	Status    int
	Payload   []byte
	RequestID string
}

func (e *RequestError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("fitgate: backend returned %d: %s", e.Status, detail)
	}
	return fmt.Sprintf("fitgate: backend returned %d", e.Status)
}

// Detail extracts the conventional "detail" or "error" field from the
// backend's JSON error payload, best effort.
func (e *RequestError) Detail() string {
	if len(e.Payload) == 0 {
		return ""
	}
	var body struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	if err := json.Unmarshal(e.Payload, &body); err != nil {
		return ""
	}
	if body.Detail != "" {
		return body.Detail
	}
	return body.Err
}
