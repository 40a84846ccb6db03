package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
	"qnotify/pkg/metrics"
)

const revisionPublishedHandlerName = "revision_published"

// RevisionPublishedHandler adapts revision.published events into the
// author notification email.
type RevisionPublishedHandler struct {
	revisions RevisionFinder
	notifier  AuthorNotifier
	deduper   Deduper
	logger    *zap.Logger
}

func NewRevisionPublishedHandler(revisions RevisionFinder, notifier AuthorNotifier, deduper Deduper, logger *zap.Logger) *RevisionPublishedHandler {
	return &RevisionPublishedHandler{
		revisions: revisions,
		notifier:  notifier,
		deduper:   deduper,
		logger:    logger,
	}
}

func (h *RevisionPublishedHandler) HandleRevisionPublished(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.RevisionPublishedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal revision published payload", zap.Error(err))
		return err
	}

	if !h.deduper.AcquireOnce(ctx, revisionPublishedHandlerName, p.EventID) {
		h.logger.Debug("Duplicate revision published event, skipping",
			zap.String("event_id", p.EventID),
		)
		metrics.IncrementTaskProcessed(revisionPublishedHandlerName, "duplicate")
		return nil
	}

	rev, err := h.revisions.FindByID(ctx, p.RevisionID)
	if err == nil {
		err = h.notifier.NotifyAuthorOfPublishedRevision(ctx, rev)
	}
	if err != nil {
		h.logger.Error("Revision published task failed",
			zap.String("event_id", p.EventID),
			zap.Int64("revision_id", p.RevisionID),
			zap.Error(err),
			zap.Stack("stack"),
		)
		metrics.IncrementTaskProcessed(revisionPublishedHandlerName, "failed")
		return err
	}

	metrics.IncrementTaskProcessed(revisionPublishedHandlerName, "success")
	return nil
}
