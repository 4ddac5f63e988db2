package fitgate

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	internalaudit "github.com/fittrack/fitgate/internal/audit"
	"github.com/fittrack/fitgate/session"
)

// Client is the authenticated request gateway. It reads tokens from the
// session store, attaches them as bearer credentials, and transparently
// performs a single refresh-and-retry cycle when the backend reports an
// expired credential.
type Client struct {
	config  Config
	baseURL url.URL
	http    *http.Client
	session *session.Store
	metrics *Metrics
	audit   *internalaudit.Dispatcher
	warn    func(string, ...any)

	// refreshMu serializes the refresh sub-protocol so concurrent
	// unauthorized calls coalesce into at most one refresh round trip.
	refreshMu sync.Mutex
}

// Session exposes the session store for startup restore, state inspection,
// and UI-driven reads. All mutation still goes through the store's own
// methods; the Client never bypasses them.
func (c *Client) Session() *session.Store {
	return c.session
}

// Restore loads a persisted session from durable storage. Malformed or
// unreadable data degrades to a logged-out session; Restore never fails.
func (c *Client) Restore(ctx context.Context) {
	c.session.Restore(ctx)

	if c.session.Authenticated() {
		c.metricInc(MetricSessionRestored)
		c.emitAudit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: AuditSessionRestored,
			Username:  c.currentUsername(),
			Success:   true,
			Metadata:  c.expiryMetadata(),
		})
	}
}

// Close flushes and stops the audit dispatcher. The Client must not be used
// after Close.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of the client's counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped by a full buffer.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// AuditDroppedByType reports dropped audit events keyed by event type.
func (c *Client) AuditDroppedByType() map[string]uint64 {
	if c == nil || c.audit == nil {
		return nil
	}
	return c.audit.DroppedByType()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	c.audit.Emit(ctx, event)
}

func (c *Client) currentUsername() string {
	if u := c.session.CurrentUser(); u != nil {
		return u.Username
	}
	return ""
}

// expiryMetadata reports the unverified exp claim of the current access
// token, when it is a parseable JWT.
func (c *Client) expiryMetadata() map[string]string {
	exp := c.session.TokenExpiry()
	if exp.IsZero() {
		return nil
	}
	return map[string]string{"token_expiry": exp.UTC().Format(time.RFC3339)}
}

func (c *Client) warnf(format string, args ...any) {
	if c == nil || c.warn == nil {
		return
	}
	c.warn(format, args...)
}
