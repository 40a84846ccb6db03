package mq

import "time"

// NotificationCreatedPayload asks the delivery side to push an instant
// notification about fresh activity in a post. One event per subscriber.
type NotificationCreatedPayload struct {
	UserID     int64     `json:"user_id"`
	ActivityID int64     `json:"activity_id"`
	PostID     int64     `json:"post_id"`
	Summary    string    `json:"summary,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
