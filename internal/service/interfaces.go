package service

import (
	"context"
	"time"

	"qnotify/internal/model"
)

// Storage collaborators, satisfied by internal/repository. The engine
// only sees these so tests can run against fakes.

type ActivityStore interface {
	Insert(ctx context.Context, a *model.Activity) error
	AddRecipients(ctx context.Context, activityID int64, userIDs []int64) error
	InsertMention(ctx context.Context, m *model.Mention) error
}

type PostStore interface {
	OriginPost(ctx context.Context, post *model.Post) (*model.Post, error)
	ResponseReceivers(ctx context.Context, post *model.Post, excludeUserID int64) ([]*model.User, error)
}

type UserStore interface {
	RecalcResponseCount(ctx context.Context, userID int64) error
	InstantEmailSubscribers(ctx context.Context, candidateIDs []int64, excludeID int64) ([]*model.User, error)
}

type ThreadStore interface {
	IncrementViewCount(ctx context.Context, threadID int64) error
}

type VisitStore interface {
	RecordVisit(ctx context.Context, userID, questionPostID int64, at time.Time) error
}

type ReplyAddressMinter interface {
	Create(ctx context.Context, userID, postID int64, replyAction string) (*model.ReplyAddress, error)
}

// Outbound collaborators. Both are fire-and-forget from the engine's
// point of view: the contract ends once the event is accepted.

type InstantDispatcher interface {
	DispatchInstant(ctx context.Context, activity *model.Activity, post *model.Post, subscribers []*model.User) error
}

type BadgeSignaler interface {
	Send(ctx context.Context, event string, actorID, contextPostID int64) error
}
