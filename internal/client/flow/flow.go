// Package flow decides which mandatory onboarding step a user still has to
// complete, and where the client should navigate next. Steps are resolved
// in a fixed priority: policy acceptance, then mode selection, then avatar
// setup.
package flow

import "github.com/levelquest/sessiongate/internal/client/models"

// Navigation targets handed back to the embedding UI.
const (
	RoutePolicy      = "/policy"
	RouteChooseMode  = "/choose-mode"
	RouteAvatarSetup = "/avatar-setup"
	RouteGamified    = "/gamified"
	RouteDashboard   = "/dashboard"
	RouteLogin       = "/login"
)

// Status is a derived view of the onboarding flags. It is recomputed on
// demand and never persisted.
type Status struct {
	NeedsPolicyAcceptance bool        `json:"needsPolicyAcceptance"`
	NeedsModeSelection    bool        `json:"needsModeSelection"`
	NeedsAvatarSetup      bool        `json:"needsAvatarSetup"`
	SelectedMode          models.Mode `json:"selectedMode,omitempty"`
}

// Evaluate projects the onboarding flags into a Status. A later gate is only
// flagged once every earlier gate has been passed, so at most one of the
// three booleans is true.
func Evaluate(flags models.FlowFlags) Status {
	return Status{
		NeedsPolicyAcceptance: !flags.PolicyAccepted,
		NeedsModeSelection:    flags.PolicyAccepted && flags.SelectedMode == "",
		NeedsAvatarSetup:      flags.PolicyAccepted && flags.SelectedMode != "" && !flags.AvatarSetupDone,
		SelectedMode:          flags.SelectedMode,
	}
}

// FailClosed is the Status to assume when the flags cannot be determined:
// every gate is treated as outstanding rather than completed.
func FailClosed() Status {
	return Status{
		NeedsPolicyAcceptance: true,
		NeedsModeSelection:    true,
		NeedsAvatarSetup:      true,
	}
}

// Redirect resolves the navigation target for this status. Gates are checked
// in priority order and the first outstanding one wins; with no outstanding
// gate the user lands on the home route of their mode.
func (s Status) Redirect() string {
	switch {
	case s.NeedsPolicyAcceptance:
		return RoutePolicy
	case s.NeedsModeSelection:
		return RouteChooseMode
	case s.NeedsAvatarSetup:
		return RouteAvatarSetup
	case s.SelectedMode == models.ModeGamified:
		return RouteGamified
	default:
		return RouteDashboard
	}
}
