package tokens

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/levelquest/sessiongate/internal/client/models"
	"github.com/levelquest/sessiongate/internal/logging"
)

// fakeRepo implements Repository for Store tests.
type fakeRepo struct {
	token *models.SessionToken

	loadErr  error
	saveErr  error
	clearErr error

	saves  int
	clears int
}

func (f *fakeRepo) Load(_ context.Context) (*models.SessionToken, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.token, nil
}

func (f *fakeRepo) Save(_ context.Context, token *models.SessionToken) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	c := *token
	f.token = &c
	return nil
}

func (f *fakeRepo) Clear(_ context.Context) error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token = nil
	return nil
}

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_SetTokensAndAccessToken(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo, discardLogger())

	s.SetTokens(ctx, models.SessionToken{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    time.Now().Add(time.Hour),
	})

	require.Equal(t, "a1", s.AccessToken())
	require.Equal(t, "r1", s.RefreshToken())
	require.Equal(t, 1, repo.saves)
}

func TestStore_IsValid_Boundary(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, discardLogger())

	expiry := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetTokens(ctx, models.SessionToken{AccessToken: "a", ExpiresAt: expiry})

	tests := []struct {
		now  time.Time
		want bool
	}{
		{expiry.Add(-time.Hour), true},
		{expiry.Add(-time.Millisecond), true},
		{expiry, false},
		{expiry.Add(time.Millisecond), false},
	}
	for _, tc := range tests {
		s.now = func() time.Time { return tc.now }
		require.Equal(t, tc.want, s.IsValid(), "now=%s", tc.now)
	}
}

func TestStore_IsValid_EmptyStore(t *testing.T) {
	s := NewStore(nil, discardLogger())
	require.False(t, s.IsValid())
}

func TestStore_SetAccessToken_KeepsRefreshAndExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, discardLogger())

	expiry := time.Now().Add(time.Hour)
	s.SetTokens(ctx, models.SessionToken{
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    expiry,
		RememberMe:   true,
	})

	s.SetAccessToken(ctx, "a2")

	got := s.Current()
	require.Equal(t, "a2", got.AccessToken)
	require.Equal(t, "r1", got.RefreshToken)
	require.True(t, got.ExpiresAt.Equal(expiry))
	require.True(t, got.RememberMe)
}

func TestStore_SetAccessToken_NoSessionIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo, discardLogger())

	s.SetAccessToken(ctx, "a1")

	require.Empty(t, s.AccessToken())
	require.Zero(t, repo.saves)
}

func TestStore_Clear_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := NewStore(repo, discardLogger())

	s.SetTokens(ctx, models.SessionToken{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)})
	s.Clear(ctx)
	s.Clear(ctx)

	require.Empty(t, s.AccessToken())
	require.Nil(t, s.Current())
	require.Equal(t, 2, repo.clears)
}

func TestStore_PersistenceFailuresAreSilent(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{
		loadErr:  errors.New("disk gone"),
		saveErr:  errors.New("disk gone"),
		clearErr: errors.New("disk gone"),
	}
	s := NewStore(repo, discardLogger())

	require.Nil(t, s.Restore(ctx))

	s.SetTokens(ctx, models.SessionToken{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)})
	require.Equal(t, "a", s.AccessToken())

	s.Clear(ctx)
	require.Empty(t, s.AccessToken())
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{token: &models.SessionToken{
		AccessToken:  "persisted",
		RefreshToken: "r",
		ExpiresAt:    time.Now().Add(time.Hour),
	}}
	s := NewStore(repo, discardLogger())

	got := s.Restore(ctx)
	require.NotNil(t, got)
	require.Equal(t, "persisted", s.AccessToken())
}
