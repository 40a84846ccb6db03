package model

import "time"

// User statuses as stored in users.status.
const (
	UserStatusAdministrator = "admin"
	UserStatusModerator     = "moderator"
	UserStatusApproved      = "approved"
	UserStatusWatched       = "watched"
	UserStatusSuspended     = "suspended"
	UserStatusBlocked       = "blocked"
)

type User struct {
	ID             int64
	Username       string
	Email          string
	Status         string
	Reputation     int
	EmailSignature string
	// NotifyInstantly marks users subscribed to instant email alerts.
	NotifyInstantly bool
	ResponseCount   int
	CreatedAt       time.Time
}

func (u *User) IsAdministrator() bool {
	return u.Status == UserStatusAdministrator
}

func (u *User) IsModerator() bool {
	return u.Status == UserStatusModerator
}
