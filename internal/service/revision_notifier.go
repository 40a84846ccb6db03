package service

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"qnotify/config"
	"qnotify/internal/email"
	"qnotify/internal/model"
)

//go:embed templates/notify_author_published.html
var templatesFS embed.FS

var publishedRevisionTpl = template.Must(
	template.ParseFS(templatesFS, "templates/notify_author_published.html"),
)

const (
	replySeparatorTemplate = "==== %s -=-=="
	replyPrompt            = "To add to your post EDIT ABOVE THIS LINE"
	editedAnswerSubject    = "An edit for my answer"
)

type publishedRevisionData struct {
	SiteName             string
	AuthorUsername       string
	AuthorEmailSignature string
	PostText             string
	// The reply addresses must land byte-for-byte in the body: the
	// inbound mail router parses them back out of the raw MIME text,
	// and the autoescaper would turn their "+" into an entity. They
	// are minted hex tokens plus the configured host, never user
	// input, so emitting them unescaped is safe.
	ReplaceContentAddress template.HTML
	ReplySeparatorLine    string
	MailtoLinkSubject     string
	ReplyCode             template.HTML
}

// RevisionNotifier emails an author when their moderated revision goes
// live, with a dual-purpose reply address: replying normally appends to
// the post, the alternative address in the body replaces it.
type RevisionNotifier struct {
	replies    ReplyAddressMinter
	activities ActivityStore
	posts      PostStore
	sender     email.Sender
	cfg        config.AppConfig
	logger     *zap.Logger
	now        func() time.Time
}

func NewRevisionNotifier(
	replies ReplyAddressMinter,
	activities ActivityStore,
	posts PostStore,
	sender email.Sender,
	cfg config.AppConfig,
	logger *zap.Logger,
) *RevisionNotifier {
	return &RevisionNotifier{
		replies:    replies,
		activities: activities,
		posts:      posts,
		sender:     sender,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

func (n *RevisionNotifier) NotifyAuthorOfPublishedRevision(ctx context.Context, rev *model.Revision) error {
	if !n.cfg.ReplyByEmailEnabled {
		return nil
	}

	// Two single-use tokens per event: one for appending a reply, one
	// for replacing the post body outright.
	appendAddr, err := n.replies.Create(ctx, rev.Author.ID, rev.Post.ID, model.ReplyActionAppendContent)
	if err != nil {
		return fmt.Errorf("mint append address: %w", err)
	}
	replaceAddr, err := n.replies.Create(ctx, rev.Author.ID, rev.Post.ID, model.ReplyActionReplaceContent)
	if err != nil {
		return fmt.Errorf("mint replace address: %w", err)
	}

	appendEmail := appendAddr.AsEmailAddress(n.cfg.ReplyHost)
	replaceEmail := replaceAddr.AsEmailAddress(n.cfg.ReplyHost)

	mailtoSubject := editedAnswerSubject
	if rev.Post.Type == model.PostTypeQuestion {
		mailtoSubject = rev.Thread.Title
	}

	data := publishedRevisionData{
		SiteName:              n.cfg.SiteName,
		AuthorUsername:        rev.Author.Username,
		AuthorEmailSignature:  rev.Author.EmailSignature,
		PostText:              rev.Post.Text,
		ReplaceContentAddress: template.HTML(replaceEmail),
		ReplySeparatorLine:    fmt.Sprintf(replySeparatorTemplate, replyPrompt),
		MailtoLinkSubject:     mailtoSubject,
		// Both addresses in one field so the template can offer either
		// action from a single mail client link.
		ReplyCode: template.HTML(appendEmail + "," + replaceEmail),
	}

	var body bytes.Buffer
	if err := publishedRevisionTpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render revision email: %w", err)
	}

	err = n.sender.Send(ctx, email.SendParams{
		To:       rev.Author.Email,
		Subject:  fmt.Sprintf("Your post at %s is now published", n.cfg.SiteName),
		BodyHTML: body.String(),
		ReplyTo:  appendEmail,
		Tag:      string(model.ActivityEmailUpdateSent),
	})
	if err != nil {
		return err
	}

	// Audit trail: the send itself is recorded as feed activity
	// related to the revision's post.
	origin, err := n.posts.OriginPost(ctx, rev.Post)
	if err != nil {
		return err
	}
	audit := &model.Activity{
		UserID:     rev.Author.ID,
		ActiveAt:   n.now(),
		PostID:     rev.Post.ID,
		Type:       model.ActivityEmailUpdateSent,
		QuestionID: origin.ID,
		Summary:    rev.Summary,
	}
	if err := n.activities.Insert(ctx, audit); err != nil {
		return fmt.Errorf("record email audit activity: %w", err)
	}

	n.logger.Info("Published revision email sent",
		zap.Int64("revision_id", rev.ID),
		zap.Int64("post_id", rev.Post.ID),
		zap.String("to", rev.Author.Email),
	)
	return nil
}
