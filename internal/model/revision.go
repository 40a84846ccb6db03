package model

import "time"

// Revision is a published post revision, resolved together with its
// post, thread and author so the email composer has everything at hand.
type Revision struct {
	ID         int64
	PostID     int64
	AuthorID   int64
	Summary    string
	ApprovedAt time.Time

	Post   *Post
	Thread *Thread
	Author *User
}
