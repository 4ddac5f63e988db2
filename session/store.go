package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// Durable storage keys. Absence of a key is the logged-out state.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyUser         = "user"
)

// Store is the single source of truth for auth state. All mutation goes
// through [Store.Set], [Store.UpdateTokens], [Store.SetUser], and
// [Store.Clear]; the access/refresh tokens and user profile always change
// atomically together.
type Store struct {
	ring Keyring
	warn func(string, ...any)

	mu      sync.RWMutex
	access  string
	refresh string
	user    *User
	expiry  time.Time
}

// NewStore creates a session store on the given keyring. A nil ring falls
// back to an in-memory keyring; a nil warn falls back to the standard logger.
func NewStore(ring Keyring, warn func(string, ...any)) *Store {
	if ring == nil {
		ring = NewMemoryKeyring()
	}
	if warn == nil {
		warn = log.Printf
	}
	return &Store{
		ring: ring,
		warn: warn,
	}
}

// Restore loads persisted tokens and profile from the keyring into memory.
// It never fails: missing keys, storage errors, and malformed persisted data
// all degrade to the corresponding field being absent. Malformed profile data
// is additionally deleted from the keyring, best effort.
func (s *Store) Restore(ctx context.Context) {
	access := s.restoreKey(ctx, keyAccessToken)
	refresh := s.restoreKey(ctx, keyRefreshToken)

	var user *User
	if raw := s.restoreKey(ctx, keyUser); raw != "" {
		user = new(User)
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			s.warn("session: discarding malformed persisted profile: %v", err)
			user = nil
			if derr := s.ring.Delete(ctx, keyUser); derr != nil {
				s.warn("session: deleting malformed persisted profile: %v", derr)
			}
		}
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.user = user
	s.expiry = tokenExpiry(access)
	s.mu.Unlock()
}

func (s *Store) restoreKey(ctx context.Context, key string) string {
	v, err := s.ring.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.warn("session: restoring %q: %v", key, err)
		}
		return ""
	}
	return v
}

// Set replaces the full session triple. Memory is updated first, atomically;
// the durable writes follow. A returned error reports a durable-write failure
// only — the in-memory state is already authoritative.
func (s *Store) Set(ctx context.Context, user *User, access, refresh string) error {
	user = user.Clone()

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.user = user
	s.expiry = tokenExpiry(access)
	s.mu.Unlock()

	var errs []error
	if err := s.ring.Set(ctx, keyAccessToken, access); err != nil {
		errs = append(errs, fmt.Errorf("persist access token: %w", err))
	}
	if err := s.ring.Set(ctx, keyRefreshToken, refresh); err != nil {
		errs = append(errs, fmt.Errorf("persist refresh token: %w", err))
	}
	if err := s.persistUser(ctx, user); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// UpdateTokens applies a token rotation from a successful refresh. An empty
// refresh token means the backend did not rotate it and the current one is
// kept. The cached user profile is untouched.
func (s *Store) UpdateTokens(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
	s.expiry = tokenExpiry(access)
	s.mu.Unlock()

	var errs []error
	if err := s.ring.Set(ctx, keyAccessToken, access); err != nil {
		errs = append(errs, fmt.Errorf("persist access token: %w", err))
	}
	if refresh != "" {
		if err := s.ring.Set(ctx, keyRefreshToken, refresh); err != nil {
			errs = append(errs, fmt.Errorf("persist refresh token: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SetUser replaces the cached profile, typically after a profile read or
// update response. Tokens are untouched.
func (s *Store) SetUser(ctx context.Context, user *User) error {
	user = user.Clone()

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	return s.persistUser(ctx, user)
}

func (s *Store) persistUser(ctx context.Context, user *User) error {
	if user == nil {
		if err := s.ring.Delete(ctx, keyUser); err != nil {
			return fmt.Errorf("delete persisted profile: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := s.ring.Set(ctx, keyUser, string(data)); err != nil {
		return fmt.Errorf("persist profile: %w", err)
	}
	return nil
}

// Clear removes the session from memory and issues durable deletes for every
// key. Memory is cleared even when the deletes fail; the returned error only
// reports the durable layer.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.user = nil
	s.expiry = time.Time{}
	s.mu.Unlock()

	var errs []error
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyUser} {
		if err := s.ring.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// AccessToken returns the current access token, or empty when logged out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

// RefreshToken returns the current refresh token, or empty when logged out.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Tokens returns the (access, refresh) pair from one consistent snapshot.
func (s *Store) Tokens() (access, refresh string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access, s.refresh
}

// CurrentUser returns a copy of the cached profile, or nil when logged out.
func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// State is a point-in-time copy of the session triple.
type State struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// Snapshot returns the full session triple from one consistent read.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		AccessToken:  s.access,
		RefreshToken: s.refresh,
		User:         s.user.Clone(),
	}
}

// TokenExpiry returns the exp claim of the current access token, parsed
// without signature verification, or the zero time when the token is absent
// or not a JWT.
func (s *Store) TokenExpiry() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiry
}

// Authenticated reports whether an access token is present.
func (s *Store) Authenticated() bool {
	return s.AccessToken() != ""
}
