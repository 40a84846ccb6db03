package mq

// Routing keys on the "events" topic exchange.
const (
	KeyPostUpdated         = "post.updated"
	KeyQuestionVisited     = "question.visited"
	KeyRevisionPublished   = "revision.published"
	KeyBadgeEvent          = "badge.event"
	KeyNotificationCreated = "notification.created"
)
