package model

import "time"

type ActivityType string

const (
	ActivityAskQuestion     ActivityType = "ask_question"
	ActivityAnswer          ActivityType = "answer"
	ActivityCommentQuestion ActivityType = "comment_question"
	ActivityCommentAnswer   ActivityType = "comment_answer"
	ActivityUpdateQuestion  ActivityType = "update_question"
	ActivityUpdateAnswer    ActivityType = "update_answer"
	ActivityMention         ActivityType = "mention"
	ActivityEmailUpdateSent ActivityType = "email_update_sent"
)

// Activity is a feed/audit record. It is inserted once per update event
// and never modified afterwards; its recipient set lives in the
// activity_recipients join table.
type Activity struct {
	ID       int64
	UserID   int64
	ActiveAt time.Time
	PostID   int64
	Type     ActivityType
	// QuestionID is the origin question of the affected post's thread.
	QuestionID int64
	Summary    string
}

// Mention links a mentioned user to the post they were mentioned in.
// A user who is already a direct recipient of the same event never
// gets a mention row on top.
type Mention struct {
	ID              int64
	MentionedUserID int64
	PostID          int64
	MentionedByID   int64
	MentionedAt     time.Time
}
