// Package session owns the authenticated-session lifecycle on the client:
// the token record, the user value, the onboarding-gate evaluation, and the
// background renewal timers. All session state flows through the Service;
// nothing else writes tokens or the user.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/levelquest/sessiongate/internal/client/avatarx"
	"github.com/levelquest/sessiongate/internal/client/flow"
	"github.com/levelquest/sessiongate/internal/client/models"
	"github.com/levelquest/sessiongate/internal/client/tokens"
	"github.com/levelquest/sessiongate/internal/client/transport"
	"github.com/levelquest/sessiongate/internal/common"
	"github.com/levelquest/sessiongate/internal/jwtx"
	"github.com/levelquest/sessiongate/internal/logging"
)

// State is the coarse lifecycle position of the session.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
)

// Session lifetimes applied when the server does not dictate an expiry.
const (
	sessionTTL         = 24 * time.Hour
	rememberSessionTTL = 7 * 24 * time.Hour
)

// Options configures a Service. Client is required; everything else has a
// usable default.
type Options struct {
	Client transport.Client
	Tokens *tokens.Store
	Logger logging.Logger

	RenewInterval time.Duration
	SyncInterval  time.Duration
}

// Service is the session controller. Every mutating method returns a Result
// rather than an error, and state transitions are serialized: an operation
// records the session epoch when it starts and its response is discarded if
// the epoch has moved on (a logout during an in-flight call always wins).
type Service struct {
	client    transport.Client
	tokens    *tokens.Store
	log       logging.Logger
	scheduler *Scheduler
	now       func() time.Time

	mu    sync.Mutex
	state State
	user  *models.User
	epoch uuid.UUID

	observers      map[int]func(*models.User)
	nextObserverID int
}

func NewService(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = noopLogger{}
	}
	store := opts.Tokens
	if store == nil {
		store = tokens.NewStore(nil, log)
	}

	s := &Service{
		client:    opts.Client,
		tokens:    store,
		log:       log,
		now:       time.Now,
		state:     StateAnonymous,
		epoch:     uuid.New(),
		observers: make(map[int]func(*models.User)),
	}
	s.scheduler = NewScheduler(opts.RenewInterval, opts.SyncInterval,
		func(ctx context.Context) { s.RefreshToken(ctx) },
		func(ctx context.Context) { s.RefreshUserData(ctx) },
		log)
	return s
}

// State returns the current lifecycle position.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *Service) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

// IsTokenValid reports whether a stored token is still within its expiry.
func (s *Service) IsTokenValid() bool {
	return s.tokens.IsValid()
}

// Close stops background work and waits for it to finish. The session state
// itself is left alone; use Logout to end the session.
func (s *Service) Close() {
	s.scheduler.Stop()
}

// OnUserChanged registers an observer called whenever the user value
// changes: wholesale replacement, field patches, and logout (nil user).
// The returned function unsubscribes.
func (s *Service) OnUserChanged(fn func(*models.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserverID
	s.nextObserverID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Service) notify(user *models.User) {
	s.mu.Lock()
	fns := make([]func(*models.User), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// Login exchanges credentials for a session. With rememberMe the session
// lives 7 days instead of 24 hours, unless the server dictates an expiry.
func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool) Result {
	gen, res := s.beginAuth()
	if res != nil {
		return *res
	}

	resp, err := s.client.Login(ctx, email, password, rememberMe)
	if err != nil {
		s.endAuth(gen)
		return s.failure(ctx, gen, err)
	}
	return s.adopt(ctx, gen, resp, rememberMe, "")
}

// Register creates an account. Approval-gated deployments yield a
// pending-approval outcome with no session; immediate-approval ones behave
// like a 24-hour login that lands on the policy gate.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) Result {
	gen, res := s.beginAuth()
	if res != nil {
		return *res
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.endAuth(gen)
		return s.failure(ctx, gen, err)
	}
	return s.adopt(ctx, gen, resp, false, flow.RoutePolicy)
}

// Restore revives a persisted session: the token record is loaded from
// local storage and, if still within its expiry, validated against
// /auth/me. An access token whose JWT exp has already passed is renewed
// first. Callers should run this once at startup.
func (s *Service) Restore(ctx context.Context) Result {
	gen, res := s.beginAuth()
	if res != nil {
		return *res
	}

	token := s.tokens.Restore(ctx)
	if token == nil || !token.Valid(s.now()) {
		s.endAuth(gen)
		if s.current(gen) {
			s.tokens.Clear(ctx)
		}
		reason := common.ErrNoSession
		if token != nil {
			reason = common.ErrTokenExpired
		}
		s.log.Debug(ctx, "nothing to restore", "reason", reason)
		return Result{Err: msgNoSession, Redirect: flow.RouteLogin}
	}

	access := token.AccessToken
	if exp, ok := jwtx.ExtractExpiry(access); ok && !s.now().Before(exp) {
		renewed, err := s.client.Refresh(ctx, access, token.RefreshToken)
		if err != nil {
			s.endAuth(gen)
			if s.current(gen) {
				s.tokens.Clear(ctx)
			}
			s.log.Warn(ctx, "stored session could not be renewed", "error", err)
			return Result{Err: msgSessionExpired, Redirect: flow.RouteLogin}
		}
		if !s.current(gen) {
			return Result{Err: msgSessionGone}
		}
		s.tokens.SetAccessToken(ctx, renewed)
		access = renewed
	}

	user, err := s.client.Me(ctx, access)
	if err != nil {
		s.endAuth(gen)
		if errors.Is(err, common.ErrUnauthorized) {
			if s.current(gen) {
				s.tokens.Clear(ctx)
			}
			return Result{Err: msgSessionExpired, Redirect: flow.RouteLogin}
		}
		// Backend unreachable: keep the stored tokens so a later Restore
		// can try again.
		return Result{Err: msgUnavailable}
	}

	s.mu.Lock()
	if s.epoch != gen {
		s.mu.Unlock()
		return Result{Err: msgSessionGone}
	}
	s.epoch = uuid.New()
	s.state = StateAuthenticated
	s.user = user
	s.scheduler.Start()
	clone := user.Clone()
	s.mu.Unlock()

	s.notify(clone)
	redirect := flow.Evaluate(user.Flow).Redirect()
	s.log.Info(ctx, "session restored", "user", user.ID, "redirect", redirect)
	return ok(redirect)
}

// Logout tears the session down: tokens cleared, user dropped, timers
// stopped, and any in-flight operation invalidated. Safe to call at any
// time, repeatedly.
func (s *Service) Logout(ctx context.Context) Result {
	s.teardown(ctx, uuid.Nil)
	return ok(flow.RouteLogin)
}

// teardown clears the session state. With gen == uuid.Nil it applies
// unconditionally; otherwise it applies only while gen is still the current
// epoch, so a stale failure cannot tear down a successor session. Reports
// whether the teardown applied.
func (s *Service) teardown(ctx context.Context, gen uuid.UUID) bool {
	s.mu.Lock()
	if gen != uuid.Nil && s.epoch != gen {
		s.mu.Unlock()
		return false
	}
	hadUser := s.user != nil
	s.state = StateAnonymous
	s.user = nil
	s.epoch = uuid.New()
	s.tokens.Clear(ctx)
	s.mu.Unlock()

	// Shutdown, not Stop: teardown may run on a scheduler job's own
	// goroutine, and waiting for it here would deadlock.
	s.scheduler.Shutdown()

	if hadUser {
		s.notify(nil)
		s.log.Info(ctx, "logged out")
	}
	return true
}

// current reports whether gen is still the session epoch.
func (s *Service) current(gen uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == gen
}

// UpdateProfile sends a partial profile update and, only once the server
// confirms, patches the in-memory user.
func (s *Service) UpdateProfile(ctx context.Context, patch transport.ProfilePatch) Result {
	gen, access, authed := s.authSnapshot()
	if !authed {
		return Result{Err: msgNoSession}
	}

	if err := s.client.UpdateProfile(ctx, access, patch); err != nil {
		return s.failure(ctx, gen, err)
	}

	return s.patchUser(gen, func(u *models.User) {
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Department != nil {
			u.Department = *patch.Department
		}
	}, "")
}

// AcceptPolicy records legal-policy acceptance and reports the next gate.
func (s *Service) AcceptPolicy(ctx context.Context) Result {
	gen, access, authed := s.authSnapshot()
	if !authed {
		return Result{Err: msgNoSession}
	}

	if err := s.client.AcceptPolicy(ctx, access); err != nil {
		return s.failure(ctx, gen, err)
	}

	return s.patchUser(gen, func(u *models.User) {
		u.Flow.PolicyAccepted = true
	}, nextRedirect)
}

// SelectMode persists the chosen product mode and reports the next gate.
func (s *Service) SelectMode(ctx context.Context, mode models.Mode) Result {
	if mode != models.ModeGamified && mode != models.ModeStandard {
		return Result{Err: "unknown mode: " + string(mode)}
	}

	gen, access, authed := s.authSnapshot()
	if !authed {
		return Result{Err: msgNoSession}
	}

	if err := s.client.SelectMode(ctx, access, mode); err != nil {
		return s.failure(ctx, gen, err)
	}

	return s.patchUser(gen, func(u *models.User) {
		u.Flow.SelectedMode = mode
	}, nextRedirect)
}

// CompleteAvatarSetup finalizes avatar onboarding on the server and then
// applies the derived avatar variants locally.
func (s *Service) CompleteAvatarSetup(ctx context.Context, avatarURL string) Result {
	gen, access, authed := s.authSnapshot()
	if !authed {
		return Result{Err: msgNoSession}
	}

	if err := s.client.CompleteAvatarSetup(ctx, access, avatarURL); err != nil {
		return s.failure(ctx, gen, err)
	}

	return s.patchUser(gen, func(u *models.User) {
		applyAvatar(u, avatarx.Normalize(avatarURL))
		u.Flow.AvatarSetupDone = true
	}, nextRedirect)
}

// UpdateUserAvatar applies an avatar change locally without a server
// round-trip: the derived variants and the avatar-setup flag take effect
// immediately. The caller is responsible for reconciling with the server
// (e.g. via CompleteAvatarSetup or the next profile sync); until then the
// local value is optimistic.
func (s *Service) UpdateUserAvatar(avatarURL string) Result {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return Result{Err: msgNoSession}
	}
	applyAvatar(s.user, avatarx.Normalize(avatarURL))
	s.user.Flow.AvatarSetupDone = true
	clone := s.user.Clone()
	s.mu.Unlock()

	s.notify(clone)
	return Result{Success: true}
}

// RefreshUserData re-fetches the canonical user record, replaces the local
// value wholesale, and notifies observers.
func (s *Service) RefreshUserData(ctx context.Context) Result {
	gen, access, authed := s.authSnapshot()
	if !authed {
		return Result{Err: msgNoSession}
	}

	user, err := s.client.Me(ctx, access)
	if err != nil {
		return s.failure(ctx, gen, err)
	}

	s.mu.Lock()
	if s.epoch != gen || s.user == nil {
		s.mu.Unlock()
		return Result{Err: msgSessionGone}
	}
	s.user = user
	clone := user.Clone()
	s.mu.Unlock()

	s.notify(clone)
	return Result{Success: true}
}

// RefreshToken renews the access token. Any failure, including a missing
// refresh token, is fatal to the session: there is no retry or backoff,
// only logout.
func (s *Service) RefreshToken(ctx context.Context) Result {
	gen, access, authed := s.authSnapshot()
	if !authed {
		return Result{Err: msgNoSession}
	}

	refresh := s.tokens.RefreshToken()
	if refresh == "" {
		if !s.teardown(ctx, gen) {
			return Result{Err: msgSessionGone}
		}
		s.log.Warn(ctx, "ending session", "error", common.ErrNoRefreshToken)
		return Result{Err: msgSessionExpired, ForcedLogout: true, Redirect: flow.RouteLogin}
	}

	renewed, err := s.client.Refresh(ctx, access, refresh)
	if err != nil {
		if !s.teardown(ctx, gen) {
			return Result{Err: msgSessionGone}
		}
		s.log.Warn(ctx, "token renewal failed, ending session", "error", err)
		return Result{Err: msgSessionExpired, ForcedLogout: true, Redirect: flow.RouteLogin}
	}

	s.mu.Lock()
	if s.epoch != gen {
		s.mu.Unlock()
		return Result{Err: msgSessionGone}
	}
	s.tokens.SetAccessToken(ctx, renewed)
	s.mu.Unlock()

	s.log.Debug(ctx, "access token renewed")
	return Result{Success: true}
}

// FlowStatus reports the outstanding onboarding gates. The server's answer
// is authoritative when reachable; otherwise the local flags are used, and
// with no session at all every gate is assumed outstanding.
func (s *Service) FlowStatus(ctx context.Context) flow.Status {
	gen, access, authed := s.authSnapshot()
	if !authed {
		return flow.FailClosed()
	}

	status, err := s.client.FlowStatus(ctx, access)
	if err == nil {
		return status
	}
	if errors.Is(err, common.ErrUnauthorized) {
		s.teardown(ctx, gen)
		return flow.FailClosed()
	}
	s.log.Warn(ctx, "flow status unavailable, using local flags", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return flow.FailClosed()
	}
	return flow.Evaluate(s.user.Flow)
}

// ---- internals ----

// beginAuth moves anonymous → authenticating. It refuses concurrent or
// repeated authentication attempts.
func (s *Service) beginAuth() (uuid.UUID, *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAuthenticating:
		return uuid.Nil, &Result{Err: "authentication already in progress"}
	case StateAuthenticated:
		return uuid.Nil, &Result{Err: "already signed in, log out first"}
	}
	s.state = StateAuthenticating
	return s.epoch, nil
}

// endAuth reverts a failed authentication attempt, unless the session has
// moved on (e.g. a logout raced the failure).
func (s *Service) endAuth(gen uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateAuthenticating && s.epoch == gen {
		s.state = StateAnonymous
	}
}

// adopt installs a successful auth response: tokens, user, timers, and the
// flow-gate redirect. The response is discarded if the session epoch moved
// while the request was in flight.
func (s *Service) adopt(ctx context.Context, gen uuid.UUID, resp *transport.AuthResponse, rememberMe bool, forcedRedirect string) Result {
	expiry := s.computeExpiry(resp, rememberMe)

	s.mu.Lock()
	if s.epoch != gen {
		s.mu.Unlock()
		s.log.Debug(ctx, "auth response discarded", "reason", common.ErrSessionReplaced)
		return Result{Err: msgSessionGone}
	}
	s.epoch = uuid.New()
	s.state = StateAuthenticated
	s.user = resp.User
	s.tokens.SetTokens(ctx, models.SessionToken{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    expiry,
		RememberMe:   rememberMe,
	})
	s.scheduler.Start()
	clone := resp.User.Clone()
	s.mu.Unlock()

	s.notify(clone)

	redirect := forcedRedirect
	if redirect == "" {
		redirect = flow.Evaluate(resp.User.Flow).Redirect()
	}
	s.log.Info(ctx, "session started", "user", resp.User.ID, "redirect", redirect)
	return ok(redirect)
}

func (s *Service) computeExpiry(resp *transport.AuthResponse, rememberMe bool) time.Time {
	if resp.ExpiresAt > 0 {
		return time.UnixMilli(resp.ExpiresAt)
	}
	if rememberMe {
		return s.now().Add(rememberSessionTTL)
	}
	return s.now().Add(sessionTTL)
}

// authSnapshot captures what an outbound authenticated call needs: the
// epoch to validate its response against, and the access token.
func (s *Service) authSnapshot() (uuid.UUID, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.user == nil {
		return uuid.Nil, "", false
	}
	return s.epoch, s.tokens.AccessToken(), true
}

// nextRedirect is a patchUser marker: re-evaluate the flow gates after the
// patch and redirect to the first outstanding one.
const nextRedirect = "\x00next"

// patchUser applies fn to the user under the epoch guard and notifies
// observers. redirect may be a fixed route, empty, or nextRedirect.
func (s *Service) patchUser(gen uuid.UUID, fn func(*models.User), redirect string) Result {
	s.mu.Lock()
	if s.epoch != gen || s.user == nil {
		s.mu.Unlock()
		return Result{Err: msgSessionGone}
	}
	fn(s.user)
	if redirect == nextRedirect {
		redirect = flow.Evaluate(s.user.Flow).Redirect()
	}
	clone := s.user.Clone()
	s.mu.Unlock()

	s.notify(clone)
	return ok(redirect)
}

func applyAvatar(u *models.User, set avatarx.Set) {
	u.Avatar = set.Avatar
	u.Avatar3D = set.Avatar3D
	u.Avatar2D = set.Avatar2D
	u.AvatarPortrait = set.AvatarPortrait
}

// noopLogger backs services constructed without a logger.
type noopLogger struct{}

func (noopLogger) Debug(context.Context, string, ...any) {}
func (noopLogger) Info(context.Context, string, ...any)  {}
func (noopLogger) Warn(context.Context, string, ...any)  {}
func (noopLogger) Error(context.Context, string, ...any) {}
func (noopLogger) With(...any) logging.Logger            { return noopLogger{} }
