package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"qnotify/config"
	mqcontracts "qnotify/contracts/mq"
	"qnotify/internal/model"
)

// ErrSelfRecipient signals that the updating user showed up in their
// own recipient or mention set. That is a bug in recipient computation,
// not a runtime condition, so the unit of work fails loudly.
var ErrSelfRecipient = errors.New("updating user appears among notification recipients")

// PostUpdate carries the resolved inputs for one post update event.
type PostUpdate struct {
	Post           *model.Post
	UpdatedBy      *model.User
	MentionedUsers []*model.User
	Timestamp      time.Time
	Created        bool
	Diff           string
}

// Engine applies the notification business rules on resolved domain
// objects. All storage and dispatch goes through the interfaces above.
type Engine struct {
	activities ActivityStore
	posts      PostStore
	users      UserStore
	threads    ThreadStore
	visits     VisitStore
	dispatcher InstantDispatcher
	badges     BadgeSignaler
	cfg        config.AppConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewEngine(
	activities ActivityStore,
	posts PostStore,
	users UserStore,
	threads ThreadStore,
	visits VisitStore,
	dispatcher InstantDispatcher,
	badges BadgeSignaler,
	cfg config.AppConfig,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		activities: activities,
		posts:      posts,
		users:      users,
		threads:    threads,
		visits:     visits,
		dispatcher: dispatcher,
		badges:     badges,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordPostUpdate records the feed activity for a post update, files
// mentions, refreshes per-user counters and hands the instant alert
// subscribers to the dispatcher.
func (e *Engine) RecordPostUpdate(ctx context.Context, upd PostUpdate) error {
	activityType, err := upd.Post.UpdateActivityType(upd.Created)
	if err != nil {
		return err
	}

	// A comment is its own summary; for everything else the caller
	// supplies the revision diff.
	summary := upd.Diff
	if upd.Post.IsComment() {
		summary = upd.Post.Text
	}

	origin, err := e.posts.OriginPost(ctx, upd.Post)
	if err != nil {
		return err
	}

	activity := &model.Activity{
		UserID:     upd.UpdatedBy.ID,
		ActiveAt:   upd.Timestamp,
		PostID:     upd.Post.ID,
		Type:       activityType,
		QuestionID: origin.ID,
		Summary:    summary,
	}
	if err := e.activities.Insert(ctx, activity); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	recipients, err := e.posts.ResponseReceivers(ctx, upd.Post, upd.UpdatedBy.ID)
	if err != nil {
		return fmt.Errorf("compute recipients: %w", err)
	}

	recipientIDs := make([]int64, 0, len(recipients))
	recipientSet := make(map[int64]bool, len(recipients))
	for _, u := range recipients {
		if u.ID == upd.UpdatedBy.ID {
			return fmt.Errorf("%w: user %d, post %d", ErrSelfRecipient, u.ID, upd.Post.ID)
		}
		recipientIDs = append(recipientIDs, u.ID)
		recipientSet[u.ID] = true
	}

	if err := e.activities.AddRecipients(ctx, activity.ID, recipientIDs); err != nil {
		return fmt.Errorf("add recipients: %w", err)
	}

	// Mentioned users who are already direct recipients are skipped so
	// nobody gets two inbox entries for the same event.
	for _, u := range upd.MentionedUsers {
		if u.ID == upd.UpdatedBy.ID {
			return fmt.Errorf("%w: self-mention by user %d, post %d", ErrSelfRecipient, u.ID, upd.Post.ID)
		}
		if recipientSet[u.ID] {
			continue
		}
		mention := &model.Mention{
			MentionedUserID: u.ID,
			PostID:          upd.Post.ID,
			MentionedByID:   upd.UpdatedBy.ID,
			MentionedAt:     upd.Timestamp,
		}
		if err := e.activities.InsertMention(ctx, mention); err != nil {
			return fmt.Errorf("insert mention: %w", err)
		}
	}

	// One counter refresh per affected user, whether they are a
	// recipient, a mentionee, or both.
	affected := make(map[int64]bool, len(recipients)+len(upd.MentionedUsers))
	for _, u := range recipients {
		affected[u.ID] = true
	}
	for _, u := range upd.MentionedUsers {
		affected[u.ID] = true
	}
	candidateIDs := make([]int64, 0, len(affected))
	for id := range affected {
		candidateIDs = append(candidateIDs, id)
		if err := e.users.RecalcResponseCount(ctx, id); err != nil {
			return fmt.Errorf("recalc response count for user %d: %w", id, err)
		}
	}

	if !e.cfg.EmailAlertsEnabled {
		return nil
	}

	subscribers, err := e.users.InstantEmailSubscribers(ctx, candidateIDs, upd.UpdatedBy.ID)
	if err != nil {
		return fmt.Errorf("compute subscribers: %w", err)
	}

	subscribers = e.throttleNewPostAlerts(upd, subscribers)

	if err := e.dispatcher.DispatchInstant(ctx, activity, upd.Post, subscribers); err != nil {
		return fmt.Errorf("dispatch instant notifications: %w", err)
	}

	e.logger.Info("Recorded post update",
		zap.Int64("post_id", upd.Post.ID),
		zap.String("activity_type", string(activityType)),
		zap.Int("recipients", len(recipients)),
		zap.Int("subscribers", len(subscribers)),
	)
	return nil
}

// throttleNewPostAlerts keeps low-reputation authors from blasting
// instant alerts with brand-new posts: when the author is neither an
// administrator nor a moderator and sits below the reputation
// threshold, only administrators stay on the list. Moderation staff
// still hears about the post; edits are never throttled.
func (e *Engine) throttleNewPostAlerts(upd PostUpdate, subscribers []*model.User) []*model.User {
	if !upd.Created {
		return subscribers
	}
	if upd.UpdatedBy.IsAdministrator() || upd.UpdatedBy.IsModerator() {
		return subscribers
	}
	if upd.UpdatedBy.Reputation >= e.cfg.ReputationThreshold {
		return subscribers
	}

	admins := subscribers[:0]
	for _, u := range subscribers {
		if u.IsAdministrator() {
			admins = append(admins, u)
		}
	}
	return admins
}

// RecordQuestionVisit handles the side effects of somebody opening a
// question page. user is nil for anonymous visitors.
func (e *Engine) RecordQuestionVisit(ctx context.Context, post *model.Post, user *model.User, updateViewCount bool) error {
	if updateViewCount {
		if err := e.threads.IncrementViewCount(ctx, post.ThreadID); err != nil {
			return fmt.Errorf("increment view count: %w", err)
		}
	}

	if user == nil {
		return nil
	}

	if err := e.visits.RecordVisit(ctx, user.ID, post.ID, e.now()); err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	if err := e.users.RecalcResponseCount(ctx, user.ID); err != nil {
		return fmt.Errorf("recalc response count: %w", err)
	}

	if err := e.badges.Send(ctx, mqcontracts.BadgeEventViewQuestion, user.ID, post.ID); err != nil {
		return fmt.Errorf("send badge event: %w", err)
	}
	return nil
}
