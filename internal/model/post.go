package model

import (
	"errors"
	"fmt"
	"time"
)

type PostType string

const (
	PostTypeQuestion PostType = "question"
	PostTypeAnswer   PostType = "answer"
	PostTypeComment  PostType = "comment"
)

var ErrUnknownPostType = errors.New("unknown post type")

func ParsePostType(s string) (PostType, error) {
	switch PostType(s) {
	case PostTypeQuestion, PostTypeAnswer, PostTypeComment:
		return PostType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPostType, s)
}

type Post struct {
	ID       int64
	Type     PostType
	Text     string
	ThreadID int64
	AuthorID int64
	// ParentID / ParentType are set for comments only and point at the
	// question or answer the comment hangs off.
	ParentID   *int64
	ParentType PostType
	CreatedAt  time.Time
}

func (p *Post) IsComment() bool {
	return p.Type == PostTypeComment
}

// UpdateActivityType classifies what kind of feed activity an update to
// this post represents, given whether the post was just created.
func (p *Post) UpdateActivityType(created bool) (ActivityType, error) {
	switch p.Type {
	case PostTypeQuestion:
		if created {
			return ActivityAskQuestion, nil
		}
		return ActivityUpdateQuestion, nil
	case PostTypeAnswer:
		if created {
			return ActivityAnswer, nil
		}
		return ActivityUpdateAnswer, nil
	case PostTypeComment:
		if p.ParentType == PostTypeAnswer {
			return ActivityCommentAnswer, nil
		}
		return ActivityCommentQuestion, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPostType, p.Type)
}

type Thread struct {
	ID        int64
	Title     string
	ViewCount int64
}
