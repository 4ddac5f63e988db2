package fitgate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New().
		WithBaseURL(srv.URL).
		WithWarn(t.Logf).
		Build()
	if err != nil {
		t.Fatalf("build client failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func seedSession(t *testing.T, c *Client, access, refresh string) {
	t.Helper()
	user := &UserProfile{ID: 1, Username: "alice", Email: "alice@example.com"}
	if err := c.Session().Set(context.Background(), user, access, refresh); err != nil {
		t.Fatalf("seeding session failed: %v", err)
	}
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding test response: %v", err)
	}
}

func TestDoAttachesBearerAndRequestID(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if got := bearer(r); got != "access-1" {
			t.Errorf("expected bearer access-1, got %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("expected Accept application/json, got %q", got)
		}
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "ok"})
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	var out map[string]string
	if err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, &out); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if out["status"] != "ok" {
		t.Fatalf("expected decoded status ok, got %q", out["status"])
	}
	if got := c.MetricsSnapshot().Counters[MetricRequestSuccess]; got != 1 {
		t.Fatalf("expected 1 request success, got %d", got)
	}
}

func TestDoWithoutTokenStillIssuesRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no Authorization header, got %q", r.Header.Get("Authorization"))
		}
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "credentials required"})
	})

	c := newTestClient(t, mux)

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", reqErr.Status)
	}
	if errors.Is(err, ErrAuthExpired) {
		t.Fatal("a logged-out call must not report auth expiry")
	}
}

func TestDoRefreshesAndRetriesOnceOn401(t *testing.T) {
	var refreshes, retries atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken != "refresh-1" {
			t.Errorf("expected refresh-1 in body, got %q (err %v)", body.RefreshToken, err)
		}
		writeJSON(t, w, http.StatusOK, map[string]string{
			"accessToken":  "access-2",
			"refreshToken": "refresh-2",
		})
	})
	mux.HandleFunc("/workouts", func(w http.ResponseWriter, r *http.Request) {
		switch bearer(r) {
		case "access-2":
			retries.Add(1)
			writeJSON(t, w, http.StatusOK, []Workout{{ID: 1, Name: "run"}})
		default:
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
		}
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	var out []Workout
	if err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/workouts"}, &out); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if refreshes.Load() != 1 || retries.Load() != 1 {
		t.Fatalf("expected 1 refresh and 1 retry, got %d and %d", refreshes.Load(), retries.Load())
	}

	access, refresh := c.Session().Tokens()
	if access != "access-2" || refresh != "refresh-2" {
		t.Fatalf("expected rotated tokens persisted, got %q %q", access, refresh)
	}
	if got := c.MetricsSnapshot().Counters[MetricRefreshSuccess]; got != 1 {
		t.Fatalf("expected 1 refresh success, got %d", got)
	}
}

func TestDoKeepsRefreshTokenWhenNotRotated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{"accessToken": "access-2"})
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) == "access-2" {
			writeJSON(t, w, http.StatusOK, map[string]string{})
			return
		}
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{})
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	if err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil); err != nil {
		t.Fatalf("request failed: %v", err)
	}

	_, refresh := c.Session().Tokens()
	if refresh != "refresh-1" {
		t.Fatalf("expected original refresh token kept, got %q", refresh)
	}
}

func TestDoRefreshFailureClearsSessionAndReportsExpiry(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "refresh revoked"})
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil)
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if c.Session().Authenticated() {
		t.Fatal("expected session cleared after failed refresh")
	}
	if got := c.MetricsSnapshot().Counters[MetricAuthExpired]; got != 1 {
		t.Fatalf("expected 1 auth expired, got %d", got)
	}
}

func TestDoSecond401AfterRetryExpiresWithoutSecondRefresh(t *testing.T) {
	var refreshes atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]string{
			"accessToken":  "access-2",
			"refreshToken": "refresh-2",
		})
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "still expired"})
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil)
	if !errors.Is(err, ErrAuthExpired) {
		t.Fatalf("expected ErrAuthExpired, got %v", err)
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", got)
	}
	if c.Session().Authenticated() {
		t.Fatal("expected session cleared")
	}
}

func TestDoNetworkFailureReportsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	client, err := New().WithBaseURL(srv.URL).Build()
	if err != nil {
		t.Fatalf("build client failed: %v", err)
	}
	defer client.Close()

	err = client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if netErr.URL == "" {
		t.Fatal("expected URL recorded on network error")
	}
	if got := client.MetricsSnapshot().Counters[MetricNetworkError]; got != 1 {
		t.Fatalf("expected 1 network error, got %d", got)
	}
}

func TestDoRequestErrorCarriesPayloadAndDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/workouts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusBadRequest, map[string]string{"detail": "duration must be positive"})
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/workouts",
		Body:   Workout{Name: "run", DurationMin: -5},
	}, nil)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %v", err)
	}
	if reqErr.Status != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", reqErr.Status)
	}
	if got := reqErr.Detail(); got != "duration must be positive" {
		t.Fatalf("expected backend detail, got %q", got)
	}
	if c.Session().Authenticated() != true {
		t.Fatal("a business rejection must not touch the session")
	}
}

func TestDoConcurrent401sCoalesceIntoOneRefresh(t *testing.T) {
	var refreshes atomic.Int64
	var mu sync.Mutex
	validAccess := ""

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		mu.Lock()
		validAccess = "access-2"
		mu.Unlock()
		writeJSON(t, w, http.StatusOK, map[string]string{
			"accessToken":  "access-2",
			"refreshToken": "refresh-2",
		})
	})
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		valid := validAccess
		mu.Unlock()
		if bearer(r) == valid {
			writeJSON(t, w, http.StatusOK, map[string]string{})
			return
		}
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	})

	c := newTestClient(t, mux)
	seedSession(t, c, "access-1", "refresh-1")

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			errs <- c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/ping"}, nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected request error: %v", err)
		}
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh round trip, got %d", got)
	}
	if got := c.MetricsSnapshot().Counters[MetricRefreshCoalesced]; got == 0 {
		t.Fatal("expected coalesced refreshes recorded")
	}
}
