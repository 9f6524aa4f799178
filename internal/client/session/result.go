package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/levelquest/sessiongate/internal/client/flow"
	"github.com/levelquest/sessiongate/internal/client/transport"
	"github.com/levelquest/sessiongate/internal/common"
)

// Result is the outcome of a mutating session operation. The service never
// returns a Go error across its public boundary; failures arrive here as a
// user-facing message.
//
// Exactly one of three shapes applies:
//   - Success true: the operation applied; Redirect may name where to go next.
//   - PendingApproval true: login/registration accepted but the account
//     awaits an administrator. Not a failure.
//   - otherwise: Err holds a message for the UI. ForcedLogout marks session
//     loss; the UI must navigate to Redirect (the login route).
type Result struct {
	Success         bool
	PendingApproval bool
	Redirect        string
	Message         string
	Err             string
	ForcedLogout    bool
}

func ok(redirect string) Result {
	return Result{Success: true, Redirect: redirect}
}

// Messages surfaced for failures that carry no server text.
const (
	msgUnavailable    = "server unreachable, please try again"
	msgSessionExpired = "session expired, please sign in again"
	msgSessionGone    = "signed out before the request finished"
	msgNoSession      = "not signed in"
)

// failure translates a transport error into a Result, forcing logout on 401
// per the universal unauthorized rule. gen is the session epoch captured when
// the request was issued: a 401 tears the session down only while that epoch
// is still current, so a stale error from a dead session cannot log out its
// successor.
func (s *Service) failure(ctx context.Context, gen uuid.UUID, err error) Result {
	var pending *transport.PendingApprovalError
	if errors.As(err, &pending) {
		return Result{PendingApproval: true, Message: pending.Message}
	}

	if errors.Is(err, common.ErrUnauthorized) {
		if !s.teardown(ctx, gen) {
			return Result{Err: msgSessionGone}
		}
		return Result{
			Err:          msgSessionExpired,
			ForcedLogout: true,
			Redirect:     flow.RouteLogin,
		}
	}

	if errors.Is(err, common.ErrUnavailable) {
		return Result{Err: msgUnavailable}
	}

	var validation *transport.ValidationError
	if errors.As(err, &validation) {
		return Result{Err: validation.Message}
	}

	s.log.Error(ctx, "unexpected transport error", "error", err)
	return Result{Err: err.Error()}
}
