package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"qnotify/internal/model"
)

type RevisionRepository struct {
	db *pgxpool.Pool
}

func NewRevisionRepository(db *pgxpool.Pool) *RevisionRepository {
	return &RevisionRepository{db: db}
}

// FindByID resolves a revision together with its post, thread and
// author in one round trip.
func (r *RevisionRepository) FindByID(ctx context.Context, id int64) (*model.Revision, error) {
	query := `
        SELECT r.id, r.post_id, r.author_id, r.summary, r.approved_at,
               p.id, p.post_type, p.text, p.thread_id, p.author_id, p.parent_id, p.created_at,
               t.id, t.title, t.view_count,
               u.id, u.username, u.email, u.status, u.reputation, u.email_signature,
               u.notify_instantly, u.response_count, u.created_at
        FROM revisions r
        JOIN posts p ON r.post_id = p.id
        JOIN threads t ON p.thread_id = t.id
        JOIN users u ON r.author_id = u.id
        WHERE r.id = $1
    `
	var rev model.Revision
	var post model.Post
	var thread model.Thread
	var author model.User

	err := r.db.QueryRow(ctx, query, id).Scan(
		&rev.ID, &rev.PostID, &rev.AuthorID, &rev.Summary, &rev.ApprovedAt,
		&post.ID, &post.Type, &post.Text, &post.ThreadID, &post.AuthorID, &post.ParentID, &post.CreatedAt,
		&thread.ID, &thread.Title, &thread.ViewCount,
		&author.ID, &author.Username, &author.Email, &author.Status, &author.Reputation,
		&author.EmailSignature, &author.NotifyInstantly, &author.ResponseCount, &author.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find revision %d: %w", id, err)
	}

	rev.Post = &post
	rev.Thread = &thread
	rev.Author = &author
	return &rev, nil
}
