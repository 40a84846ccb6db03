package model

import "time"

// QuestionVisit is the per-user per-question cursor updated on every
// authenticated question view.
type QuestionVisit struct {
	UserID         int64
	QuestionPostID int64
	VisitedAt      time.Time
}
