package fitgate

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Login authenticates with the backend and establishes the local session.
// On success the returned tokens and profile are persisted; a durable-storage
// failure is reported through the warn hook but never fails the login.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", AuditLogin, creds.Username, creds)
}

// Register creates an account and establishes the local session, mirroring
// the post-conditions of [Client.Login].
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", AuditRegister, reg.Username, reg)
}

func (c *Client) authenticate(ctx context.Context, path, eventType, username string, body any) (*AuthResult, error) {
	var result AuthResult
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
		NoAuth: true,
	}, &result)
	if err != nil {
		c.metricInc(MetricLoginFailure)
		c.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: eventType,
			Username:  username,
			Path:      path,
			Error:     err.Error(),
		})
		return nil, err
	}
	if result.AccessToken == "" {
		c.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("fitgate: %s response carries no access token", path)
	}

	if err := c.session.Set(ctx, result.User, result.AccessToken, result.RefreshToken); err != nil {
		c.warnf("fitgate: persisting session after %s: %v", path, err)
	}

	c.metricInc(MetricLoginSuccess)
	c.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Username:  username,
		Path:      path,
		Success:   true,
		Metadata:  c.expiryMetadata(),
	})
	return &result, nil
}

// Logout revokes the refresh token server-side and clears the local session.
// The local session is cleared even when revocation fails; the revocation
// error is reported through the warn hook, and only a failure to clear
// durable storage is returned.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}

	username := c.currentUsername()
	_, refresh := c.session.Tokens()
	if refresh != "" {
		err := c.Do(ctx, Request{
			Method: http.MethodPost,
			Path:   "/auth/logout",
			Body:   map[string]string{"refreshToken": refresh},
		}, nil)
		if err != nil {
			c.warnf("fitgate: server-side logout: %v", err)
		}
	}

	clearErr := c.session.Clear(ctx)
	c.metricInc(MetricLogout)
	c.metricInc(MetricSessionCleared)
	c.emitAudit(ctx, AuditEvent{
		Timestamp: time.Now(),
		EventType: AuditLogout,
		Username:  username,
		Success:   clearErr == nil,
		Error:     errText(clearErr),
	})
	return clearErr
}

// Refresh forces a token refresh outside the automatic retry path. On
// failure the session is cleared and the error wraps [ErrAuthExpired].
func (c *Client) Refresh(ctx context.Context) error {
	if c == nil {
		return ErrClientNotReady
	}

	access, _ := c.session.Tokens()
	if _, err := c.refreshAccess(ctx, access); err != nil {
		if clearErr := c.session.Clear(ctx); clearErr != nil {
			c.warnf("fitgate: clearing session after failed refresh: %v", clearErr)
		}
		c.metricInc(MetricSessionCleared)
		return err
	}
	return nil
}
