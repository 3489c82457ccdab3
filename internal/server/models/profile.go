package models

import "time"

type Profile struct {
	ID           int64
	UUID         string
	Introduction string
	MBTI         string
	Exp          int64
	ReportCount  int
	Swipe        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewDefaultProfile returns the profile created on first bootstrap.
func NewDefaultProfile(uuid string) *Profile {
	return &Profile{UUID: uuid, Exp: 0, ReportCount: 0, Swipe: true}
}

// ProfileInfoUpdate replaces the editable profile fields together with the
// liked and played game lists.
type ProfileInfoUpdate struct {
	Introduction string
	MBTI         string
	LikedGameIDs []int64
	PlayGames    []PlayGameInput
	MainGameID   *int64
}

// ProfileStatus is the outcome of a bootstrap check. Created is set when the
// default profile row was inserted by this call.
type ProfileStatus struct {
	Profile         *Profile
	Created         bool
	NeedsOnboarding bool
}
