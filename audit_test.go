package fitgate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientEmitsAuditEventsOnLifecycle(t *testing.T) {
	sink := NewChannelSink(16)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, AuthResult{
			User:         &UserProfile{ID: 1, Username: "alice", Email: "alice@example.com"},
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
		})
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client, err := New().
		WithBaseURL(srv.URL).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.Login(ctx, Credentials{Username: "alice", Password: "correct-horse"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := client.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	client.Close() // drains the dispatcher into the sink

	events := sink.Drain()
	want := []string{AuditLogin, AuditLogout}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i, w := range want {
		if events[i].EventType != w {
			t.Fatalf("expected event %d to be %q, got %q", i, w, events[i].EventType)
		}
	}
	if events[0].Username != "alice" || !events[0].Success {
		t.Fatalf("unexpected login event %+v", events[0])
	}

	if got := client.AuditDropped(); got != 0 {
		t.Fatalf("expected no drops, got %d", got)
	}
	if byType := client.AuditDroppedByType(); len(byType) != 0 {
		t.Fatalf("expected empty per-type drops, got %v", byType)
	}
}

func TestClientWithoutAuditSinkEmitsNothing(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())

	// Audit disabled by default: lifecycle calls must not panic or block.
	if err := c.Logout(context.Background()); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if got := c.AuditDropped(); got != 0 {
		t.Fatalf("expected 0 dropped with audit disabled, got %d", got)
	}
}
