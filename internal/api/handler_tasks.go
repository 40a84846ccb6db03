package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
)

// EventPublisher is satisfied by *mq.Publisher.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// TaskHandler turns HTTP calls from the web application into queued
// task events. Only primitive ids cross this boundary.
type TaskHandler struct {
	publisher EventPublisher
	logger    *zap.Logger
}

func NewTaskHandler(publisher EventPublisher, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		publisher: publisher,
		logger:    logger,
	}
}

// PostUpdated handles POST /tasks/post-updated
func (h *TaskHandler) PostUpdated(c *gin.Context) {
	var req struct {
		PostID           int64     `json:"post_id" binding:"required"`
		PostType         string    `json:"post_type" binding:"required"`
		MentionedUserIDs []int64   `json:"mentioned_user_ids"`
		UpdatedByID      int64     `json:"updated_by_id" binding:"required"`
		Timestamp        time.Time `json:"timestamp"`
		Created          bool      `json:"created"`
		Diff             string    `json:"diff"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}

	payload := mqcontracts.PostUpdatedPayload{
		EventID:          uuid.NewString(),
		PostID:           req.PostID,
		PostType:         req.PostType,
		MentionedUserIDs: req.MentionedUserIDs,
		UpdatedByID:      req.UpdatedByID,
		Timestamp:        req.Timestamp,
		Created:          req.Created,
		Diff:             req.Diff,
	}

	h.enqueue(c, mqcontracts.KeyPostUpdated, payload.EventID, payload)
}

// QuestionVisited handles POST /tasks/question-visited
func (h *TaskHandler) QuestionVisited(c *gin.Context) {
	var req struct {
		QuestionPostID  int64 `json:"question_post_id" binding:"required"`
		UserID          int64 `json:"user_id"`
		UpdateViewCount bool  `json:"update_view_count"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	payload := mqcontracts.QuestionVisitedPayload{
		EventID:         uuid.NewString(),
		QuestionPostID:  req.QuestionPostID,
		UserID:          req.UserID,
		UpdateViewCount: req.UpdateViewCount,
	}

	h.enqueue(c, mqcontracts.KeyQuestionVisited, payload.EventID, payload)
}

// RevisionPublished handles POST /tasks/revision-published
func (h *TaskHandler) RevisionPublished(c *gin.Context) {
	var req struct {
		RevisionID int64 `json:"revision_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	payload := mqcontracts.RevisionPublishedPayload{
		EventID:    uuid.NewString(),
		RevisionID: req.RevisionID,
	}

	h.enqueue(c, mqcontracts.KeyRevisionPublished, payload.EventID, payload)
}

func (h *TaskHandler) enqueue(c *gin.Context, routingKey, eventID string, payload any) {
	if err := h.publisher.Publish(routingKey, payload); err != nil {
		h.logger.Error("Failed to publish task event",
			zap.String("routing_key", routingKey),
			zap.String("event_id", eventID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue task"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"event_id": eventID,
		"status":   "queued",
	})
}
