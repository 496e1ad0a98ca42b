// Package session maps request session state to an authenticated user
// identifier. Sessions live in an external store keyed by an opaque
// token carried in an HttpOnly cookie.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrUnauthenticated indicates the request carries no resolvable session.
var ErrUnauthenticated = errors.New("authentication required")

// Store is the narrow contract against the external session store.
// Implemented by *cache.Cache; tests supply an isolated fake per case.
type Store interface {
	GetSessionUserID(ctx context.Context, token string) (int, error)
	SetSessionUserID(ctx context.Context, token string, userID int, ttl time.Duration) error
	DeleteSession(ctx context.Context, token string) error
}

// Manager resolves, issues, and clears sessions. It is an explicit
// per-request capability, never process-global state.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager creates a session Manager.
func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Resolve maps the request's session cookie to a user ID. It consults
// the store on every call; login and logout change session state
// between requests, so resolution is never cached in-process.
// Returns ErrUnauthenticated when the cookie is missing, the token is
// unknown, or the stored value is not a valid identifier.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (int, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return 0, ErrUnauthenticated
	}

	userID, err := m.store.GetSessionUserID(ctx, cookie.Value)
	if err != nil {
		// Unknown token and corrupted value resolve identically.
		return 0, ErrUnauthenticated
	}

	return userID, nil
}

// Issue establishes a new session for the user: mints an opaque token,
// writes it to the store, and sets the session cookie.
func (m *Manager) Issue(ctx context.Context, w http.ResponseWriter, userID int) error {
	token := uuid.New().String()

	if err := m.store.SetSessionUserID(ctx, token, userID, m.ttl); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Clear flushes the request's session: removes the store entry and
// expires the cookie. Clearing an absent session is not an error.
func (m *Manager) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.cookieName)
	if err == nil && cookie.Value != "" {
		if err := m.store.DeleteSession(ctx, cookie.Value); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
