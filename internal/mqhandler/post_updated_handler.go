package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
	"qnotify/internal/model"
	"qnotify/internal/service"
	"qnotify/pkg/metrics"
)

const postUpdatedHandlerName = "post_updated"

// PostUpdatedHandler is the task adapter for post.updated events: it
// reconstitutes rows from the primitive ids in the payload and hands
// them to the engine. Failures are logged with a full stack and
// returned unchanged; the consumer nacks and the queue owns retries.
type PostUpdatedHandler struct {
	users   UserFinder
	posts   PostFinder
	engine  PostUpdateRecorder
	deduper Deduper
	logger  *zap.Logger
}

func NewPostUpdatedHandler(users UserFinder, posts PostFinder, engine PostUpdateRecorder, deduper Deduper, logger *zap.Logger) *PostUpdatedHandler {
	return &PostUpdatedHandler{
		users:   users,
		posts:   posts,
		engine:  engine,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *PostUpdatedHandler) HandlePostUpdated(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.PostUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal post updated payload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, postUpdatedHandlerName, p.EventID) {
		h.logger.Debug("Duplicate post updated event, skipping",
			zap.String("event_id", p.EventID),
		)
		metrics.IncrementTaskProcessed(postUpdatedHandlerName, "duplicate")
		return nil
	}

	if err := h.process(ctx, p); err != nil {
		h.logger.Error("Post update task failed",
			zap.String("event_id", p.EventID),
			zap.Int64("post_id", p.PostID),
			zap.Error(err),
			zap.Stack("stack"),
		)
		metrics.IncrementTaskProcessed(postUpdatedHandlerName, "failed")
		return err
	}

	metrics.IncrementTaskProcessed(postUpdatedHandlerName, "success")
	return nil
}

func (h *PostUpdatedHandler) process(ctx context.Context, p mqcontracts.PostUpdatedPayload) error {
	postType, err := model.ParsePostType(p.PostType)
	if err != nil {
		return err
	}

	updatedBy, err := h.users.FindByID(ctx, p.UpdatedByID)
	if err != nil {
		return fmt.Errorf("resolve updating user %d: %w", p.UpdatedByID, err)
	}

	post, err := h.posts.FindByTypeAndID(ctx, postType, p.PostID)
	if err != nil {
		return err
	}

	mentioned, err := h.users.ListByIDs(ctx, p.MentionedUserIDs)
	if err != nil {
		return fmt.Errorf("resolve mentioned users: %w", err)
	}

	return h.engine.RecordPostUpdate(ctx, service.PostUpdate{
		Post:           post,
		UpdatedBy:      updatedBy,
		MentionedUsers: mentioned,
		Timestamp:      p.Timestamp,
		Created:        p.Created,
		Diff:           p.Diff,
	})
}
