// Package auth resolves who is behind a request. The Session watcher mirrors
// the web client's auth state object: it starts unresolved, one background
// probe determines the initial state, and a one-shot Ready channel lets the
// route guard block until that determination instead of guessing.
package auth

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// ErrInvalidSession means the provider rejected the token.
var ErrInvalidSession = errors.New("invalid session")

// Validator is the part of Client the session watcher needs.
type Validator interface {
	ValidateToken(ctx context.Context, sessionToken string) (*User, error)
	Ping(ctx context.Context) error
}

type cachedUser struct {
	user    *User
	expires time.Time
}

// Session is an explicitly constructed auth-state holder: no package-level
// reactive handles. Initialized flips true once the first provider
// round-trip settles (successfully or not); Ready closes at the same moment.
type Session struct {
	mu          sync.RWMutex
	validator   Validator
	initialized bool
	ready       chan struct{}
	readyOnce   sync.Once

	cacheTTL time.Duration
	cache    map[string]cachedUser
}

func NewSession(v Validator) *Session {
	return &Session{
		validator: v,
		ready:     make(chan struct{}),
		cacheTTL:  30 * time.Second,
		cache:     make(map[string]cachedUser),
	}
}

// StartWatch determines the initial auth state in the background: one probe
// against the provider, then the readiness signal fires. The guard refuses
// to make authorization decisions before that.
func (s *Session) StartWatch(ctx context.Context) {
	go func() {
		if err := s.validator.Ping(ctx); err != nil {
			log.Printf("⚠️  Auth provider probe failed: %v (sessions will be re-checked per request)", err)
		}
		s.markInitialized()
	}()
}

func (s *Session) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
}

// Initialized reports whether the initial auth state has been determined.
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Ready resolves exactly once, when the initial auth state is known.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until the session is ready or the context ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CurrentUser resolves the user for a session token, nil when the token is
// empty or rejected. Answers are cached briefly so a busy table view does
// not hammer the provider.
func (s *Session) CurrentUser(ctx context.Context, token string) *User {
	if token == "" {
		return nil
	}

	s.mu.RLock()
	entry, ok := s.cache[token]
	s.mu.RUnlock()
	if ok && time.Now().Before(entry.expires) {
		return entry.user
	}

	user, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrInvalidSession) {
			log.Printf("⚠️  Session validation error: %v", err)
		}
		user = nil
	}

	s.mu.Lock()
	s.cache[token] = cachedUser{user: user, expires: time.Now().Add(s.cacheTTL)}
	s.mu.Unlock()

	return user
}

// Invalidate drops a token from the cache (sign-out).
func (s *Session) Invalidate(token string) {
	s.mu.Lock()
	delete(s.cache, token)
	s.mu.Unlock()
}
