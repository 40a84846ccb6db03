package mqhandler

import (
	"context"

	"qnotify/internal/model"
	"qnotify/internal/service"
)

// Lookup and engine dependencies, satisfied by internal/repository and
// internal/service. Narrow interfaces keep the adapters testable
// without a database.

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error)
}

type PostFinder interface {
	FindByTypeAndID(ctx context.Context, postType model.PostType, id int64) (*model.Post, error)
}

type RevisionFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Revision, error)
}

type PostUpdateRecorder interface {
	RecordPostUpdate(ctx context.Context, upd service.PostUpdate) error
}

type QuestionVisitRecorder interface {
	RecordQuestionVisit(ctx context.Context, post *model.Post, user *model.User, updateViewCount bool) error
}

type AuthorNotifier interface {
	NotifyAuthorOfPublishedRevision(ctx context.Context, rev *model.Revision) error
}

type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventID string) bool
}
