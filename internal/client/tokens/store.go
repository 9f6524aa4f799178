package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/levelquest/sessiongate/internal/client/models"
	"github.com/levelquest/sessiongate/internal/logging"
)

// Store is the client-held token cell. The in-memory copy is authoritative;
// the repository is a best-effort mirror so sessions survive restarts.
// Persistence failures are logged and otherwise ignored: every Store
// operation is total.
type Store struct {
	mu    sync.RWMutex
	token *models.SessionToken

	repo Repository // may be nil for memory-only stores
	log  logging.Logger
	now  func() time.Time
}

// NewStore builds a Store over an optional persistence repository.
func NewStore(repo Repository, log logging.Logger) *Store {
	return &Store{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Restore loads a previously persisted token record into memory. It returns
// the restored token, or nil if nothing usable was stored. A memory-only
// store hands back whatever it already holds.
func (s *Store) Restore(ctx context.Context) *models.SessionToken {
	if s.repo == nil {
		return s.Current()
	}

	token, err := s.repo.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to restore persisted session", "error", err)
		return nil
	}
	if token == nil {
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token
}

// SetTokens replaces the stored record with the given one. All four fields
// change together; prior values are overwritten.
func (s *Store) SetTokens(ctx context.Context, token models.SessionToken) {
	s.mu.Lock()
	s.token = &token
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, &token); err != nil {
		s.log.Warn(ctx, "failed to persist session tokens", "error", err)
	}
}

// SetAccessToken swaps only the access token, keeping the refresh token and
// expiry policy untouched. This is the silent-renewal path. It is a no-op
// when no session is stored.
func (s *Store) SetAccessToken(ctx context.Context, accessToken string) {
	s.mu.Lock()
	if s.token == nil {
		s.mu.Unlock()
		return
	}
	updated := *s.token
	updated.AccessToken = accessToken
	s.token = &updated
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, &updated); err != nil {
		s.log.Warn(ctx, "failed to persist renewed access token", "error", err)
	}
}

// AccessToken returns the current access token, or "" when none is stored.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

// RefreshToken returns the current refresh token, or "" when none is stored.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// Current returns a copy of the stored record, or nil.
func (s *Store) Current() *models.SessionToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil
	}
	c := *s.token
	return &c
}

// IsValid reports whether a token is stored and not yet expired. It has no
// side effects.
func (s *Store) IsValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token.Valid(s.now())
}

// Clear drops the stored record. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear persisted session", "error", err)
	}
}
