package models

// Mode is the product experience a user picks during onboarding.
type Mode string

const (
	ModeGamified Mode = "gamified"
	ModeStandard Mode = "standard"
)

// UserStats is the gamification sub-record of a user.
type UserStats struct {
	Level  int   `json:"level"`
	XP     int64 `json:"xp"`
	Coins  int64 `json:"coins"`
	Tokens int64 `json:"tokens"`
	Streak int   `json:"streak"`
}

// FlowFlags are the onboarding-gate flags. They are the single canonical
// copy; anything the server duplicates at the top level of its payloads is
// folded into this record at the transport boundary.
type FlowFlags struct {
	PolicyAccepted  bool `json:"hasPolicyAccepted"`
	SelectedMode    Mode `json:"selectedMode,omitempty"`
	AvatarSetupDone bool `json:"hasCompletedAvatarSetup"`
}

// User is the authenticated user record. It is owned by the session service;
// no other component mutates it.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	Stats      UserStats `json:"stats"`
	Flow       FlowFlags `json:"flow"`

	Avatar         string `json:"avatar"`
	Avatar3D       string `json:"avatar3D,omitempty"`
	Avatar2D       string `json:"avatar2D,omitempty"`
	AvatarPortrait string `json:"avatarPortrait,omitempty"`
}

// TotalXP is a derived projection kept for callers that expect the legacy
// top-level mirror of Stats.XP. It is never stored separately.
func (u *User) TotalXP() int64 {
	if u == nil {
		return 0
	}
	return u.Stats.XP
}

// Clone returns a copy safe to hand to observers. User has no reference
// fields today, so a shallow copy suffices.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
