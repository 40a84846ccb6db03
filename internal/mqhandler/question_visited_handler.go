package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
	"qnotify/internal/model"
	"qnotify/pkg/metrics"
)

const questionVisitedHandlerName = "question_visited"

// QuestionVisitedHandler adapts question.visited events. Like the
// other tasks it receives primitive ids; UserID 0 marks an anonymous
// visitor and resolves to no user at all.
type QuestionVisitedHandler struct {
	users   UserFinder
	posts   PostFinder
	engine  QuestionVisitRecorder
	deduper Deduper
	logger  *zap.Logger
}

func NewQuestionVisitedHandler(users UserFinder, posts PostFinder, engine QuestionVisitRecorder, deduper Deduper, logger *zap.Logger) *QuestionVisitedHandler {
	return &QuestionVisitedHandler{
		users:   users,
		posts:   posts,
		engine:  engine,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *QuestionVisitedHandler) HandleQuestionVisited(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.QuestionVisitedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal question visited payload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, questionVisitedHandlerName, p.EventID) {
		h.logger.Debug("Duplicate question visited event, skipping",
			zap.String("event_id", p.EventID),
		)
		metrics.IncrementTaskProcessed(questionVisitedHandlerName, "duplicate")
		return nil
	}

	if err := h.process(ctx, p); err != nil {
		h.logger.Error("Question visit task failed",
			zap.String("event_id", p.EventID),
			zap.Int64("question_post_id", p.QuestionPostID),
			zap.Error(err),
			zap.Stack("stack"),
		)
		metrics.IncrementTaskProcessed(questionVisitedHandlerName, "failed")
		return err
	}

	metrics.IncrementTaskProcessed(questionVisitedHandlerName, "success")
	return nil
}

func (h *QuestionVisitedHandler) process(ctx context.Context, p mqcontracts.QuestionVisitedPayload) error {
	post, err := h.posts.FindByTypeAndID(ctx, model.PostTypeQuestion, p.QuestionPostID)
	if err != nil {
		return err
	}

	var user *model.User
	if p.UserID != 0 {
		user, err = h.users.FindByID(ctx, p.UserID)
		if err != nil {
			return fmt.Errorf("resolve visiting user %d: %w", p.UserID, err)
		}
	}

	return h.engine.RecordQuestionVisit(ctx, post, user, p.UpdateViewCount)
}
