// Package session keeps the operator's bearer token and its lifecycle.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"smartdeals/internal/domain"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type State string

const (
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
	StateExpired       State = "expired"
)

func (s State) String() string {
	return string(s)
}

// TokenStorage persists the token across restarts.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Store moves between anonymous, authenticated and expired. Login is the only
// way into authenticated; a 401 or a past JWT exp leads to expired; Logout and
// Expire both clear durable storage.
type Store struct {
	storage TokenStorage
	auth    authenticator
	now     func() time.Time

	// persistMu keeps a state change and its storage write together, so an
	// Expire for an old token never clears a newer login from storage.
	persistMu sync.Mutex

	mu        sync.RWMutex
	token     string
	state     State
	listeners []func(State)
}

func NewStore(storage TokenStorage, auth authenticator) *Store {
	return &Store{
		storage: storage,
		auth:    auth,
		now:     time.Now,
		state:   StateAnonymous,
	}
}

func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// OnChange registers f to be called after every state transition.
func (s *Store) OnChange(f func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners = append(s.listeners, f)
}

// Restore reads the token once from storage. The token is not validated
// beyond its exp claim; a revoked token shows up on the first 401.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return domain.WrapError(err, errcodes.SessionStorage, "load token")
	}

	switch {
	case token == "":
		s.set(ctx, "", StateAnonymous)
	case s.expired(token):
		s.set(ctx, "", StateExpired)

		if err = s.storage.Clear(ctx); err != nil {
			return domain.WrapError(err, errcodes.SessionStorage, "clear expired token")
		}
	default:
		s.set(ctx, token, StateAuthenticated)
	}

	return nil
}

// Login exchanges credentials for a token. On refusal the state is left as it was.
func (s *Store) Login(ctx context.Context, username, password string) error {
	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("auth.Login: %w", err)
	}

	if token == "" {
		return domain.NewError(errcodes.CredentialsMismatch, "login refused")
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.set(ctx, token, StateAuthenticated)

	// A storage failure only costs persistence across restarts.
	if err = s.storage.Save(ctx, token); err != nil {
		logger(ctx).Warn("storage.Save", logx.Error(err))
	}

	return nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.set(ctx, "", StateAnonymous)

	if err := s.storage.Clear(ctx); err != nil {
		return domain.WrapError(err, errcodes.SessionStorage, "clear token")
	}

	return nil
}

// Expire is called when the backend rejected token. It is a no-op unless
// token is still the current one; a late 401 for a request sent before a new
// login leaves that login alone.
func (s *Store) Expire(ctx context.Context, token string) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	current, state := s.token, s.state
	s.mu.RUnlock()

	if state != StateAuthenticated || current != token {
		return nil
	}

	s.set(ctx, "", StateExpired)

	if err := s.storage.Clear(ctx); err != nil {
		return domain.WrapError(err, errcodes.SessionStorage, "clear token")
	}

	return nil
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *Store) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// BearerToken returns the token to send, or "" when the session is not
// authenticated or the token's exp has passed meanwhile.
func (s *Store) BearerToken() string {
	s.mu.RLock()
	token, state := s.token, s.state
	s.mu.RUnlock()

	if state != StateAuthenticated {
		return ""
	}

	if s.expired(token) {
		ctx := context.Background()
		if err := s.Expire(ctx, token); err != nil {
			logger(ctx).Warn("session.Expire", logx.Error(err))
		}

		return ""
	}

	return token
}

func (s *Store) set(ctx context.Context, token string, state State) {
	s.mu.Lock()
	previous := s.state
	s.token = token
	s.state = state
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if previous == state {
		return
	}

	logger(ctx).Info(
		"session state changed",
		slog.String("from", previous.String()),
		slog.String(logx.FieldSessionState, state.String()),
	)

	for _, f := range listeners {
		f(state)
	}
}

// expired reads exp without verifying the signature; the console has no key.
// Tokens that are not JWTs never expire client-side.
func (s *Store) expired(token string) bool {
	var claims jwt.RegisteredClaims

	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}

	return claims.ExpiresAt != nil && !s.now().Before(claims.ExpiresAt.Time)
}
