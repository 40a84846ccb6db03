package mq

// BadgeEventPayload is the fire-and-forget signal consumed by the badge
// engine. This service's contract ends at publishing it.
type BadgeEventPayload struct {
	Event         string `json:"event"` // e.g. "view_question"
	ActorID       int64  `json:"actor_id"`
	ContextPostID int64  `json:"context_post_id"`
}

const BadgeEventViewQuestion = "view_question"
