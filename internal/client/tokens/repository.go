// Package tokens owns the session-token store: an in-memory cell backed by
// optional local persistence, so a still-valid session survives a process
// restart.
package tokens

import (
	"context"

	"github.com/levelquest/sessiongate/internal/client/models"
)

// Repository persists one session token record. Load returns (nil, nil)
// when no record is stored.
type Repository interface {
	Load(ctx context.Context) (*models.SessionToken, error)
	Save(ctx context.Context, token *models.SessionToken) error
	Clear(ctx context.Context) error
}
