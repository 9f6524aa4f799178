// Package transport is the client's view of the auth backend. The Client
// interface is the black-box collaborator the session service talks to;
// HTTPClient implements it over the JSON API.
package transport

import (
	"context"

	"github.com/levelquest/sessiongate/internal/client/flow"
	"github.com/levelquest/sessiongate/internal/client/models"
)

// AuthResponse is the payload of a successful login or immediate-approval
// registration. ExpiresAt is epoch milliseconds and zero when the server
// leaves expiry to the client.
type AuthResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresAt    int64        `json:"expiresAt,omitempty"`
	User         *models.User `json:"user"`
}

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Client is the transport collaborator. Implementations map failures to the
// shared taxonomy: common.ErrUnauthorized for 401 (always fatal to the
// session), common.ErrUnavailable for unreachable backends,
// *ValidationError for 4xx rejections, and *PendingApprovalError for
// accounts awaiting an administrator.
type Client interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Me(ctx context.Context, accessToken string) (*models.User, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (string, error)
	AcceptPolicy(ctx context.Context, accessToken string) error
	SelectMode(ctx context.Context, accessToken string, mode models.Mode) error
	FlowStatus(ctx context.Context, accessToken string) (flow.Status, error)
	CompleteAvatarSetup(ctx context.Context, accessToken, avatarURL string) error
	UpdateProfile(ctx context.Context, accessToken string, patch ProfilePatch) error
}
