package fitgate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/fittrack/fitgate/internal/flows"
)

// Request is one outbound backend call. Authentication is required by
// default; set NoAuth for the endpoints reachable while logged out.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	NoAuth bool
}

// Do issues the request through the gateway. The response body is decoded
// into out when out is non-nil. Terminal outcomes map onto the error
// taxonomy: nil on 2xx, *NetworkError on transport failure, *RequestError on
// a non-2xx business response, and ErrAuthExpired when the session could not
// be kept alive (the session is already cleared in that case).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil {
		return ErrClientNotReady
	}

	var body []byte
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("fitgate: encode request body: %w", err)
		}
		body = encoded
	}

	start := time.Now()
	res := flows.RunSend(ctx, flows.Call{
		Method: req.Method,
		Path:   req.Path,
		Query:  req.Query,
		Body:   body,
		NoAuth: req.NoAuth,
	}, flows.SendDeps{
		Client:        c.http,
		BaseURL:       c.baseURL,
		UserAgent:     c.config.UserAgent,
		NewRequestID:  uuid.NewString,
		Session:       c.session,
		RefreshAccess: c.refreshAccess,
		Warn:          c.warnf,
	})
	c.metrics.Observe(MetricRequestLatency, time.Since(start))

	switch res.Failure {
	case flows.SendFailureBuild:
		return fmt.Errorf("fitgate: build request: %w", res.Err)

	case flows.SendFailureNetwork:
		c.metricInc(MetricNetworkError)
		return &NetworkError{Op: req.Method, URL: res.URL, Err: res.Err}

	case flows.SendFailureAuthExpired:
		c.metricInc(MetricAuthExpired)
		c.metricInc(MetricSessionCleared)
		c.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditAuthExpired,
			RequestID: res.RequestID,
			Path:      req.Path,
			Status:    res.Status,
			Error:     errText(res.Err),
		})
		if res.Err != nil {
			return fmt.Errorf("%w: %v", ErrAuthExpired, res.Err)
		}
		return fmt.Errorf("%w: unauthorized after refresh", ErrAuthExpired)

	case flows.SendFailureStatus:
		c.metricInc(MetricRequestRejected)
		return &RequestError{Status: res.Status, Payload: res.Payload, RequestID: res.RequestID}
	}

	c.metricInc(MetricRequestSuccess)

	if out != nil && len(res.Payload) > 0 {
		if err := json.Unmarshal(res.Payload, out); err != nil {
			return fmt.Errorf("fitgate: decode response body: %w", err)
		}
	}
	return nil
}

// refreshAccess runs the refresh sub-protocol under the refresh mutex.
// staleAccess is the token the unauthorized call carried: when the stored
// token has already moved past it, a concurrent call refreshed first and the
// newer token is reused without a second refresh round trip.
func (c *Client) refreshAccess(ctx context.Context, staleAccess string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	access, refresh := c.session.Tokens()
	if access != "" && access != staleAccess {
		c.metricInc(MetricRefreshCoalesced)
		return access, nil
	}
	if refresh == "" {
		return "", fmt.Errorf("%w: no refresh token", ErrAuthExpired)
	}

	res := flows.RunRefresh(ctx, refresh, flows.RefreshDeps{
		Client:       c.http,
		BaseURL:      c.baseURL,
		UserAgent:    c.config.UserAgent,
		NewRequestID: uuid.NewString,
	})
	if res.Failure != flows.RefreshFailureNone {
		c.metricInc(MetricRefreshFailure)
		c.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditTokenRefresh,
			Username:  c.currentUsername(),
			RequestID: res.RequestID,
			Status:    res.Status,
			Error:     errText(res.Err),
		})
		return "", fmt.Errorf("%w: %v", ErrAuthExpired, res.Err)
	}

	if err := c.session.UpdateTokens(ctx, res.AccessToken, res.RefreshToken); err != nil {
		c.warnf("fitgate: persisting refreshed tokens: %v", err)
	}

	c.metricInc(MetricRefreshSuccess)
	c.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditTokenRefresh,
		Username:  c.currentUsername(),
		RequestID: res.RequestID,
		Status:    res.Status,
		Success:   true,
		Metadata:  c.expiryMetadata(),
	})
	return res.AccessToken, nil
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
