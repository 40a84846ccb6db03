package mq

import "time"

// Task payloads carried across the queue boundary. By convention they
// hold primitive ids and scalars only; rows are re-resolved on the
// consuming side. EventID is a uuid minted at enqueue time and used by
// consumers to drop redeliveries.

// PostUpdatedPayload is published when a post is created or edited.
type PostUpdatedPayload struct {
	EventID          string    `json:"event_id"`
	PostID           int64     `json:"post_id"`
	PostType         string    `json:"post_type"` // question / answer / comment
	MentionedUserIDs []int64   `json:"mentioned_user_ids,omitempty"`
	UpdatedByID      int64     `json:"updated_by_id"`
	Timestamp        time.Time `json:"timestamp"`
	Created          bool      `json:"created"`
	Diff             string    `json:"diff,omitempty"`
}

// QuestionVisitedPayload is published when somebody opens a question
// page. UserID 0 means an anonymous visitor.
type QuestionVisitedPayload struct {
	EventID         string `json:"event_id"`
	QuestionPostID  int64  `json:"question_post_id"`
	UserID          int64  `json:"user_id,omitempty"`
	UpdateViewCount bool   `json:"update_view_count"`
}

// RevisionPublishedPayload is published when a moderated revision goes
// live and its author should be told by email.
type RevisionPublishedPayload struct {
	EventID    string `json:"event_id"`
	RevisionID int64  `json:"revision_id"`
}
