package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	mqcontracts "qnotify/contracts/mq"
	"qnotify/internal/model"
	"qnotify/internal/service"
)

type fakeUserFinder struct {
	users map[int64]*model.User
}

func (f *fakeUserFinder) FindByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}

func (f *fakeUserFinder) ListByIDs(_ context.Context, ids []int64) ([]*model.User, error) {
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakePostFinder struct {
	posts map[int64]*model.Post
}

func (f *fakePostFinder) FindByTypeAndID(_ context.Context, postType model.PostType, id int64) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok || p.Type != postType {
		return nil, fmt.Errorf("post %d of type %s not found", id, postType)
	}
	return p, nil
}

type fakeRevisionFinder struct {
	revisions map[int64]*model.Revision
}

func (f *fakeRevisionFinder) FindByID(_ context.Context, id int64) (*model.Revision, error) {
	r, ok := f.revisions[id]
	if !ok {
		return nil, fmt.Errorf("revision %d not found", id)
	}
	return r, nil
}

type fakePostUpdateRecorder struct {
	got service.PostUpdate
	err error
}

func (f *fakePostUpdateRecorder) RecordPostUpdate(_ context.Context, upd service.PostUpdate) error {
	f.got = upd
	return f.err
}

type fakeVisitRecorder struct {
	post            *model.Post
	user            *model.User
	updateViewCount bool
	called          bool
}

func (f *fakeVisitRecorder) RecordQuestionVisit(_ context.Context, post *model.Post, user *model.User, updateViewCount bool) error {
	f.called = true
	f.post = post
	f.user = user
	f.updateViewCount = updateViewCount
	return nil
}

type fakeNotifier struct {
	got *model.Revision
	err error
}

func (f *fakeNotifier) NotifyAuthorOfPublishedRevision(_ context.Context, rev *model.Revision) error {
	f.got = rev
	return f.err
}

// passDeduper admits everything; dupDeduper rejects everything.
type passDeduper struct{}

func (passDeduper) AcquireOnce(_ context.Context, _, _ string) bool { return true }

type dupDeduper struct{}

func (dupDeduper) AcquireOnce(_ context.Context, _, _ string) bool { return false }

func marshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestHandlePostUpdated(t *testing.T) {
	users := &fakeUserFinder{users: map[int64]*model.User{
		3: {ID: 3, Username: "editor"},
		9: {ID: 9, Username: "mentionee"},
	}}
	posts := &fakePostFinder{posts: map[int64]*model.Post{
		5: {ID: 5, Type: model.PostTypeAnswer, ThreadID: 10},
	}}
	recorder := &fakePostUpdateRecorder{}
	h := NewPostUpdatedHandler(users, posts, recorder, passDeduper{}, zap.NewNop())

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	raw := marshal(t, mqcontracts.PostUpdatedPayload{
		EventID:          "evt-1",
		PostID:           5,
		PostType:         "answer",
		MentionedUserIDs: []int64{9},
		UpdatedByID:      3,
		Timestamp:        ts,
		Created:          true,
		Diff:             "diff text",
	})

	require.NoError(t, h.HandlePostUpdated(context.Background(), raw))

	assert.Equal(t, int64(5), recorder.got.Post.ID)
	assert.Equal(t, int64(3), recorder.got.UpdatedBy.ID)
	require.Len(t, recorder.got.MentionedUsers, 1)
	assert.Equal(t, int64(9), recorder.got.MentionedUsers[0].ID)
	assert.Equal(t, ts, recorder.got.Timestamp)
	assert.True(t, recorder.got.Created)
	assert.Equal(t, "diff text", recorder.got.Diff)
}

func TestHandlePostUpdated_UnknownPostType(t *testing.T) {
	recorder := &fakePostUpdateRecorder{}
	h := NewPostUpdatedHandler(&fakeUserFinder{}, &fakePostFinder{}, recorder, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.PostUpdatedPayload{
		EventID:     "evt-2",
		PostID:      5,
		PostType:    "poll",
		UpdatedByID: 3,
	})

	err := h.HandlePostUpdated(context.Background(), raw)
	require.ErrorIs(t, err, model.ErrUnknownPostType)
	assert.Nil(t, recorder.got.Post)
}

func TestHandlePostUpdated_DuplicateSkipped(t *testing.T) {
	recorder := &fakePostUpdateRecorder{}
	h := NewPostUpdatedHandler(&fakeUserFinder{}, &fakePostFinder{}, recorder, dupDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.PostUpdatedPayload{
		EventID:     "evt-3",
		PostID:      5,
		PostType:    "answer",
		UpdatedByID: 3,
	})

	// Duplicates ack without touching the engine.
	require.NoError(t, h.HandlePostUpdated(context.Background(), raw))
	assert.Nil(t, recorder.got.Post)
}

func TestHandlePostUpdated_EngineErrorPropagates(t *testing.T) {
	users := &fakeUserFinder{users: map[int64]*model.User{3: {ID: 3}}}
	posts := &fakePostFinder{posts: map[int64]*model.Post{
		5: {ID: 5, Type: model.PostTypeAnswer},
	}}
	recorder := &fakePostUpdateRecorder{err: errors.New("engine broke")}
	h := NewPostUpdatedHandler(users, posts, recorder, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.PostUpdatedPayload{
		EventID:     "evt-4",
		PostID:      5,
		PostType:    "answer",
		UpdatedByID: 3,
	})

	err := h.HandlePostUpdated(context.Background(), raw)
	require.EqualError(t, err, "engine broke")
}

func TestHandleQuestionVisited_LoggedIn(t *testing.T) {
	users := &fakeUserFinder{users: map[int64]*model.User{7: {ID: 7}}}
	posts := &fakePostFinder{posts: map[int64]*model.Post{
		1: {ID: 1, Type: model.PostTypeQuestion, ThreadID: 10},
	}}
	recorder := &fakeVisitRecorder{}
	h := NewQuestionVisitedHandler(users, posts, recorder, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.QuestionVisitedPayload{
		EventID:         "evt-5",
		QuestionPostID:  1,
		UserID:          7,
		UpdateViewCount: true,
	})

	require.NoError(t, h.HandleQuestionVisited(context.Background(), raw))
	require.True(t, recorder.called)
	assert.Equal(t, int64(1), recorder.post.ID)
	require.NotNil(t, recorder.user)
	assert.Equal(t, int64(7), recorder.user.ID)
	assert.True(t, recorder.updateViewCount)
}

func TestHandleQuestionVisited_AnonymousUserIsNil(t *testing.T) {
	posts := &fakePostFinder{posts: map[int64]*model.Post{
		1: {ID: 1, Type: model.PostTypeQuestion, ThreadID: 10},
	}}
	recorder := &fakeVisitRecorder{}
	h := NewQuestionVisitedHandler(&fakeUserFinder{}, posts, recorder, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.QuestionVisitedPayload{
		EventID:        "evt-6",
		QuestionPostID: 1,
		UserID:         0,
	})

	require.NoError(t, h.HandleQuestionVisited(context.Background(), raw))
	require.True(t, recorder.called)
	assert.Nil(t, recorder.user)
}

func TestHandleQuestionVisited_NonQuestionPostFails(t *testing.T) {
	posts := &fakePostFinder{posts: map[int64]*model.Post{
		5: {ID: 5, Type: model.PostTypeAnswer},
	}}
	recorder := &fakeVisitRecorder{}
	h := NewQuestionVisitedHandler(&fakeUserFinder{}, posts, recorder, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.QuestionVisitedPayload{
		EventID:        "evt-7",
		QuestionPostID: 5,
	})

	require.Error(t, h.HandleQuestionVisited(context.Background(), raw))
	assert.False(t, recorder.called)
}

func TestHandleRevisionPublished(t *testing.T) {
	rev := &model.Revision{ID: 42}
	revisions := &fakeRevisionFinder{revisions: map[int64]*model.Revision{42: rev}}
	notifier := &fakeNotifier{}
	h := NewRevisionPublishedHandler(revisions, notifier, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.RevisionPublishedPayload{
		EventID:    "evt-8",
		RevisionID: 42,
	})

	require.NoError(t, h.HandleRevisionPublished(context.Background(), raw))
	assert.Equal(t, rev, notifier.got)
}

func TestHandleRevisionPublished_MissingRevision(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewRevisionPublishedHandler(&fakeRevisionFinder{}, notifier, passDeduper{}, zap.NewNop())

	raw := marshal(t, mqcontracts.RevisionPublishedPayload{
		EventID:    "evt-9",
		RevisionID: 42,
	})

	require.Error(t, h.HandleRevisionPublished(context.Background(), raw))
	assert.Nil(t, notifier.got)
}

func TestHandleRevisionPublished_BadPayload(t *testing.T) {
	h := NewRevisionPublishedHandler(&fakeRevisionFinder{}, &fakeNotifier{}, passDeduper{}, zap.NewNop())
	require.Error(t, h.HandleRevisionPublished(context.Background(), json.RawMessage(`{not json`)))
}
