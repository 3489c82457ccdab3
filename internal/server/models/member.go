// Package models defines server-side data models persisted in the database.
package models

import "time"

// MemberState is the lifecycle state stored in members.unregister.
type MemberState string

const (
	MemberStateActive    MemberState = "MEMBER"
	MemberStateDeleted   MemberState = "DELETED"
	MemberStateBlacklist MemberState = "BLACKLIST"
)

// Member is an account record. UUID is the identity shared by every
// profile table.
type Member struct {
	ID        int64
	UUID      string
	Email     string
	Name      string
	Nickname  string
	Gender    string
	BirthDate *time.Time
	State     MemberState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the member may log in and holds its email and nickname.
func (m *Member) Active() bool {
	return m.State == MemberStateActive
}

// NewMember carries registration input.
type NewMember struct {
	Email     string
	Name      string
	Nickname  string
	Gender    string
	BirthDate *time.Time
	ImageURL  string
}

// MemberInfoUpdate replaces the editable member fields together with the
// liked and played game lists.
type MemberInfoUpdate struct {
	Nickname     string
	Gender       string
	BirthDate    *time.Time
	LikedGameIDs []int64
	PlayGames    []PlayGameInput
	MainGameID   *int64
}

// NicknameResult answers a nickname availability check.
type NicknameResult struct {
	Duplicated bool
	Message    string
}
