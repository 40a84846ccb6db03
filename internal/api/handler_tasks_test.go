package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
)

type fakePublisher struct {
	routingKey string
	payload    any
	err        error
}

func (f *fakePublisher) Publish(routingKey string, payload any) error {
	if f.err != nil {
		return f.err
	}
	f.routingKey = routingKey
	f.payload = payload
	return nil
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return w
}

func TestPostUpdatedEnqueues(t *testing.T) {
	pub := &fakePublisher{}
	h := NewTaskHandler(pub, zap.NewNop())

	w := postJSON(t, h.PostUpdated, `{
		"post_id": 5,
		"post_type": "answer",
		"mentioned_user_ids": [9],
		"updated_by_id": 3,
		"created": true,
		"diff": "text"
	}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, mqcontracts.KeyPostUpdated, pub.routingKey)

	payload, ok := pub.payload.(mqcontracts.PostUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(5), payload.PostID)
	assert.Equal(t, "answer", payload.PostType)
	assert.Equal(t, []int64{9}, payload.MentionedUserIDs)
	assert.Equal(t, int64(3), payload.UpdatedByID)
	assert.True(t, payload.Created)
	assert.NotEmpty(t, payload.EventID)
	assert.False(t, payload.Timestamp.IsZero())

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp["status"])
	assert.Equal(t, payload.EventID, resp["event_id"])
}

func TestPostUpdatedRejectsMissingFields(t *testing.T) {
	pub := &fakePublisher{}
	h := NewTaskHandler(pub, zap.NewNop())

	w := postJSON(t, h.PostUpdated, `{"post_id": 5}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.routingKey)
}

func TestQuestionVisitedAllowsAnonymous(t *testing.T) {
	pub := &fakePublisher{}
	h := NewTaskHandler(pub, zap.NewNop())

	w := postJSON(t, h.QuestionVisited, `{
		"question_post_id": 1,
		"update_view_count": true
	}`)

	require.Equal(t, http.StatusAccepted, w.Code)
	payload, ok := pub.payload.(mqcontracts.QuestionVisitedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(0), payload.UserID)
	assert.True(t, payload.UpdateViewCount)
}

func TestRevisionPublishedEnqueues(t *testing.T) {
	pub := &fakePublisher{}
	h := NewTaskHandler(pub, zap.NewNop())

	w := postJSON(t, h.RevisionPublished, `{"revision_id": 42}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, mqcontracts.KeyRevisionPublished, pub.routingKey)
}

func TestEnqueuePublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	h := NewTaskHandler(pub, zap.NewNop())

	w := postJSON(t, h.RevisionPublished, `{"revision_id": 42}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
