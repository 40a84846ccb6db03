package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
	"qnotify/internal/model"
	"qnotify/internal/outbox"
	"qnotify/pkg/metrics"
)

// OutboxPublisher implements InstantDispatcher and BadgeSignaler by
// parking events in the transactional outbox. The worker's dispatcher
// goroutine moves them onto the exchange, so a broker outage never
// loses a signal.
type OutboxPublisher struct {
	repo   *outbox.Repository
	logger *zap.Logger
}

func NewOutboxPublisher(repo *outbox.Repository, logger *zap.Logger) *OutboxPublisher {
	return &OutboxPublisher{repo: repo, logger: logger}
}

// DispatchInstant files one notification.created event per subscriber.
func (p *OutboxPublisher) DispatchInstant(ctx context.Context, activity *model.Activity, post *model.Post, subscribers []*model.User) error {
	for _, u := range subscribers {
		payload := mqcontracts.NotificationCreatedPayload{
			UserID:     u.ID,
			ActivityID: activity.ID,
			PostID:     post.ID,
			Summary:    activity.Summary,
			CreatedAt:  time.Now(),
		}
		if err := outbox.Insert(ctx, p.repo, "activity", &activity.ID, mqcontracts.KeyNotificationCreated, payload); err != nil {
			return fmt.Errorf("enqueue notification for user %d: %w", u.ID, err)
		}
		metrics.IncrementNotificationsDispatched(string(activity.Type))
	}

	if len(subscribers) > 0 {
		p.logger.Info("Instant notifications enqueued",
			zap.Int64("activity_id", activity.ID),
			zap.Int("subscribers", len(subscribers)),
		)
	}
	return nil
}

// Send files a badge event for the badge engine.
func (p *OutboxPublisher) Send(ctx context.Context, event string, actorID, contextPostID int64) error {
	payload := mqcontracts.BadgeEventPayload{
		Event:         event,
		ActorID:       actorID,
		ContextPostID: contextPostID,
	}
	if err := outbox.Insert(ctx, p.repo, "badge", nil, mqcontracts.KeyBadgeEvent, payload); err != nil {
		return fmt.Errorf("enqueue badge event: %w", err)
	}
	return nil
}
