package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	users      map[string]*User
	pingErr    error
	validCalls int
}

func (f *fakeValidator) ValidateToken(ctx context.Context, token string) (*User, error) {
	f.validCalls++
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, ErrInvalidSession
}

func (f *fakeValidator) Ping(ctx context.Context) error {
	return f.pingErr
}

func TestSession_ReadyResolvesOnce(t *testing.T) {
	s := NewSession(&fakeValidator{})

	assert.False(t, s.Initialized())
	select {
	case <-s.Ready():
		t.Fatal("ready resolved before the watch started")
	default:
	}

	s.StartWatch(context.Background())

	select {
	case <-s.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("ready never resolved")
	}
	assert.True(t, s.Initialized())

	// A second Wait returns immediately.
	require.NoError(t, s.Wait(context.Background()))
}

func TestSession_ReadyEvenWhenProviderDown(t *testing.T) {
	s := NewSession(&fakeValidator{pingErr: assert.AnError})
	s.StartWatch(context.Background())

	// The initial state still settles; requests fall through to
	// per-request validation.
	require.NoError(t, s.Wait(context.Background()))
	assert.True(t, s.Initialized())
}

func TestSession_WaitHonorsContext(t *testing.T) {
	s := NewSession(&fakeValidator{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, s.Wait(ctx)) // watch never started
}

func TestSession_CurrentUser(t *testing.T) {
	v := &fakeValidator{users: map[string]*User{
		"tok-alice": {ID: "U1", Username: "alice"},
	}}
	s := NewSession(v)

	assert.Nil(t, s.CurrentUser(context.Background(), ""))

	u := s.CurrentUser(context.Background(), "tok-alice")
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)

	// Second hit comes out of the cache.
	_ = s.CurrentUser(context.Background(), "tok-alice")
	assert.Equal(t, 1, v.validCalls)

	assert.Nil(t, s.CurrentUser(context.Background(), "tok-bogus"))
}

func TestSession_Invalidate(t *testing.T) {
	v := &fakeValidator{users: map[string]*User{
		"tok": {ID: "U1", Username: "alice"},
	}}
	s := NewSession(v)

	require.NotNil(t, s.CurrentUser(context.Background(), "tok"))
	s.Invalidate("tok")

	// Cache dropped: the next resolution goes back to the provider.
	require.NotNil(t, s.CurrentUser(context.Background(), "tok"))
	assert.Equal(t, 2, v.validCalls)
}
