package flows

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// Call is one outbound backend request. Auth is required by default; NoAuth
// marks the handful of endpoints reachable while logged out.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	NoAuth bool
}

// SendFailureKind classifies send flow outcomes for root-level error mapping.
type SendFailureKind int

const (
	SendFailureNone SendFailureKind = iota
	SendFailureBuild
	SendFailureNetwork
	SendFailureStatus
	SendFailureAuthExpired
)

// SendResult carries the terminal state of one send: the response payload on
// success, or failure metadata.
type SendResult struct {
	Failure   SendFailureKind
	Err       error
	Status    int
	Payload   []byte
	URL       string
	RequestID string
	Refreshed bool
}

// SendDeps captures send flow dependencies.
type SendDeps struct {
	Client       HTTPDoer
	BaseURL      url.URL
	UserAgent    string
	NewRequestID func() string
	Session      SessionState

	// RefreshAccess performs the refresh sub-protocol and returns a usable
	// access token. staleAccess is the token the failing call carried, so
	// the implementation can detect a refresh that already happened.
	RefreshAccess func(ctx context.Context, staleAccess string) (string, error)

	Warn func(string, ...any)
}

// RunSend drives one call through the gateway state machine:
//
//	Unsent → Sent → {Success, Unauthorized}
//	Unauthorized → RefreshAttempted → {Retried → Success/Error, RefreshFailed → AuthExpired}
//
// Exactly one refresh-and-resend cycle is performed per call. An unauthorized
// response that recurs after the retry, or a failed refresh, clears the
// session and terminates in SendFailureAuthExpired.
func RunSend(ctx context.Context, call Call, deps SendDeps) SendResult {
	access, refresh := deps.Session.Tokens()

	req, requestID, err := buildRequest(ctx, call, access, deps)
	if err != nil {
		return SendResult{Failure: SendFailureBuild, Err: err}
	}

	res, err := roundTrip(deps.Client, req)
	if err != nil {
		return SendResult{
			Failure:   SendFailureNetwork,
			Err:       err,
			URL:       req.URL.String(),
			RequestID: requestID,
		}
	}

	if res.status != http.StatusUnauthorized || call.NoAuth || refresh == "" {
		return classify(res, req.URL.String(), requestID, false)
	}

	newAccess, err := deps.RefreshAccess(ctx, access)
	if err != nil {
		clearSession(ctx, deps)
		return SendResult{
			Failure:   SendFailureAuthExpired,
			Err:       err,
			Status:    res.status,
			URL:       req.URL.String(),
			RequestID: requestID,
		}
	}

	retry, retryID, err := buildRequest(ctx, call, newAccess, deps)
	if err != nil {
		return SendResult{Failure: SendFailureBuild, Err: err, Refreshed: true}
	}

	res, err = roundTrip(deps.Client, retry)
	if err != nil {
		return SendResult{
			Failure:   SendFailureNetwork,
			Err:       err,
			URL:       retry.URL.String(),
			RequestID: retryID,
			Refreshed: true,
		}
	}

	if res.status == http.StatusUnauthorized {
		// The retried call is still rejected. No second refresh.
		clearSession(ctx, deps)
		return SendResult{
			Failure:   SendFailureAuthExpired,
			Status:    res.status,
			Payload:   res.payload,
			URL:       retry.URL.String(),
			RequestID: retryID,
			Refreshed: true,
		}
	}

	return classify(res, retry.URL.String(), retryID, true)
}

type attempt struct {
	status  int
	payload []byte
}

func buildRequest(ctx context.Context, call Call, access string, deps SendDeps) (*http.Request, string, error) {
	target := deps.BaseURL.JoinPath(call.Path)
	if len(call.Query) > 0 {
		target.RawQuery = call.Query.Encode()
	}

	var body io.Reader
	if len(call.Body) > 0 {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target.String(), body)
	if err != nil {
		return nil, "", err
	}

	req.Header.Set("Accept", "application/json")
	if len(call.Body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if deps.UserAgent != "" {
		req.Header.Set("User-Agent", deps.UserAgent)
	}

	var requestID string
	if deps.NewRequestID != nil {
		requestID = deps.NewRequestID()
		req.Header.Set("X-Request-ID", requestID)
	}

	if !call.NoAuth && access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	return req, requestID, nil
}

func roundTrip(client HTTPDoer, req *http.Request) (attempt, error) {
	resp, err := client.Do(req)
	if err != nil {
		return attempt{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return attempt{}, err
	}

	return attempt{status: resp.StatusCode, payload: payload}, nil
}

func classify(res attempt, urlStr, requestID string, refreshed bool) SendResult {
	out := SendResult{
		Status:    res.status,
		Payload:   res.payload,
		URL:       urlStr,
		RequestID: requestID,
		Refreshed: refreshed,
	}
	if res.status < 200 || res.status > 299 {
		out.Failure = SendFailureStatus
	}
	return out
}

func clearSession(ctx context.Context, deps SendDeps) {
	if err := deps.Session.Clear(ctx); err != nil && deps.Warn != nil {
		deps.Warn("fitgate: clearing session after auth expiry: %v", err)
	}
}
