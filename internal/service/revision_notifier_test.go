package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"qnotify/internal/email"
	"qnotify/internal/model"
)

type fakeReplyMinter struct {
	created []*model.ReplyAddress
}

func (f *fakeReplyMinter) Create(_ context.Context, userID, postID int64, replyAction string) (*model.ReplyAddress, error) {
	addr := &model.ReplyAddress{
		ID:             int64(len(f.created) + 1),
		Address:        fmt.Sprintf("tok%d", len(f.created)+1),
		UserID:         userID,
		PostID:         postID,
		ReplyAction:    replyAction,
		AllowedReplies: 1,
	}
	f.created = append(f.created, addr)
	return addr, nil
}

type fakeSender struct {
	sent []email.SendParams
	err  error
}

func (f *fakeSender) Send(_ context.Context, p email.SendParams) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

func newRevisionFixture(cfg fixtureConfig) (*RevisionNotifier, *fakeReplyMinter, *fakeSender, *fakeActivityStore) {
	minter := &fakeReplyMinter{}
	sender := &fakeSender{}
	activities := &fakeActivityStore{}
	posts := &fakePostStore{origin: cfg.origin}

	appCfg := defaultAppConfig()
	appCfg.ReplyByEmailEnabled = cfg.replyByEmail

	n := NewRevisionNotifier(minter, activities, posts, sender, appCfg, zap.NewNop())
	return n, minter, sender, activities
}

type fixtureConfig struct {
	replyByEmail bool
	origin       *model.Post
}

func questionRevision() *model.Revision {
	post := &model.Post{ID: 1, Type: model.PostTypeQuestion, Text: "How do I frobnicate?", ThreadID: 10, AuthorID: 7}
	return &model.Revision{
		ID:      42,
		PostID:  post.ID,
		Summary: "fixed typos",
		Post:    post,
		Thread:  &model.Thread{ID: 10, Title: "How do I frobnicate?"},
		Author:  &model.User{ID: 7, Username: "alice", Email: "alice@example.com", EmailSignature: "-- alice"},
	}
}

func TestNotifyAuthor_DisabledIsNoop(t *testing.T) {
	n, minter, sender, activities := newRevisionFixture(fixtureConfig{replyByEmail: false})

	err := n.NotifyAuthorOfPublishedRevision(context.Background(), questionRevision())
	require.NoError(t, err)
	assert.Empty(t, minter.created)
	assert.Empty(t, sender.sent)
	assert.Empty(t, activities.inserted)
}

func TestNotifyAuthor_QuestionRevision(t *testing.T) {
	rev := questionRevision()
	n, minter, sender, activities := newRevisionFixture(fixtureConfig{replyByEmail: true, origin: rev.Post})

	err := n.NotifyAuthorOfPublishedRevision(context.Background(), rev)
	require.NoError(t, err)

	// Two single-use addresses, append first then replace.
	require.Len(t, minter.created, 2)
	assert.Equal(t, model.ReplyActionAppendContent, minter.created[0].ReplyAction)
	assert.Equal(t, model.ReplyActionReplaceContent, minter.created[1].ReplyAction)
	assert.Equal(t, int64(7), minter.created[0].UserID)
	assert.Equal(t, int64(1), minter.created[0].PostID)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "alice@example.com", msg.To)
	assert.Equal(t, "Your post at Test Site is now published", msg.Subject)
	assert.Equal(t, "reply+tok1@reply.test", msg.ReplyTo)
	assert.Equal(t, string(model.ActivityEmailUpdateSent), msg.Tag)

	// Body carries the edit separator, both reply addresses and a
	// mailto link whose subject is the thread title for questions.
	assert.Contains(t, msg.BodyHTML, "==== To add to your post EDIT ABOVE THIS LINE -=-==")
	assert.Contains(t, msg.BodyHTML, "reply+tok1@reply.test,reply+tok2@reply.test")
	assert.Contains(t, msg.BodyHTML, "reply+tok2@reply.test")
	// The inbound router reads the raw body, so the "+" in the
	// addresses must survive rendering literally, not as an entity.
	assert.NotContains(t, msg.BodyHTML, "&#43;")
	assert.Contains(t, msg.BodyHTML, "How do I frobnicate?")
	assert.Contains(t, msg.BodyHTML, "-- alice")

	// Audit activity for the send.
	require.Len(t, activities.inserted, 1)
	audit := activities.inserted[0]
	assert.Equal(t, model.ActivityEmailUpdateSent, audit.Type)
	assert.Equal(t, int64(7), audit.UserID)
	assert.Equal(t, int64(1), audit.PostID)
	assert.Equal(t, "fixed typos", audit.Summary)
}

func TestNotifyAuthor_AnswerRevisionSubject(t *testing.T) {
	question := &model.Post{ID: 1, Type: model.PostTypeQuestion, ThreadID: 10}
	answer := &model.Post{ID: 5, Type: model.PostTypeAnswer, Text: "Use a frobnicator.", ThreadID: 10, AuthorID: 7}
	rev := &model.Revision{
		ID:     43,
		PostID: answer.ID,
		Post:   answer,
		Thread: &model.Thread{ID: 10, Title: "How do I frobnicate?"},
		Author: &model.User{ID: 7, Username: "alice", Email: "alice@example.com"},
	}
	n, _, sender, _ := newRevisionFixture(fixtureConfig{replyByEmail: true, origin: question})

	err := n.NotifyAuthorOfPublishedRevision(context.Background(), rev)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	// Answers get the fixed mailto subject, not the thread title. The
	// subject sits inside a mailto href, so spaces come out URL-escaped.
	assert.Contains(t, sender.sent[0].BodyHTML, "subject=An%20edit%20for%20my%20answer")
}

func TestNotifyAuthor_SendFailureSkipsAudit(t *testing.T) {
	rev := questionRevision()
	n, _, sender, activities := newRevisionFixture(fixtureConfig{replyByEmail: true, origin: rev.Post})
	sender.err = email.ErrFailedToSendEmail

	err := n.NotifyAuthorOfPublishedRevision(context.Background(), rev)
	require.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.Empty(t, activities.inserted)
}
