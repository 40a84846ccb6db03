package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"qnotify/internal/model"
)

type PostRepository struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

// FindByTypeAndID is the polymorphic lookup: the type tag from the task
// payload scopes the query, so a stale id/type pair fails instead of
// resolving to the wrong entity.
func (r *PostRepository) FindByTypeAndID(ctx context.Context, postType model.PostType, id int64) (*model.Post, error) {
	query := `
        SELECT p.id, p.post_type, p.text, p.thread_id, p.author_id,
               p.parent_id, COALESCE(pp.post_type, ''), p.created_at
        FROM posts p
        LEFT JOIN posts pp ON p.parent_id = pp.id
        WHERE p.id = $1 AND p.post_type = $2
    `
	var p model.Post
	err := r.db.QueryRow(ctx, query, id, string(postType)).Scan(
		&p.ID, &p.Type, &p.Text, &p.ThreadID, &p.AuthorID,
		&p.ParentID, &p.ParentType, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find %s %d: %w", postType, id, err)
	}
	return &p, nil
}

// OriginPost walks from any post to the question that roots its thread.
func (r *PostRepository) OriginPost(ctx context.Context, post *model.Post) (*model.Post, error) {
	if post.Type == model.PostTypeQuestion {
		return post, nil
	}

	query := `
        SELECT p.id, p.post_type, p.text, p.thread_id, p.author_id,
               p.parent_id, '', p.created_at
        FROM posts p
        WHERE p.thread_id = $1 AND p.post_type = 'question'
    `
	var p model.Post
	err := r.db.QueryRow(ctx, query, post.ThreadID).Scan(
		&p.ID, &p.Type, &p.Text, &p.ThreadID, &p.AuthorID,
		&p.ParentID, &p.ParentType, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("origin post for thread %d: %w", post.ThreadID, err)
	}
	return &p, nil
}

// ResponseReceivers computes who receives responses for an update to
// the given post. The participant set is variant-dependent: questions
// and answers notify every contributor in the thread, comments notify
// the sibling comment authors and the parent post's author. The
// excluded user is dropped at SQL level.
func (r *PostRepository) ResponseReceivers(ctx context.Context, post *model.Post, excludeUserID int64) ([]*model.User, error) {
	var query string
	var args []any

	if post.IsComment() {
		if post.ParentID == nil {
			return nil, fmt.Errorf("comment %d has no parent", post.ID)
		}
		query = `
            SELECT DISTINCT ` + userColumns + `
            FROM users
            WHERE (
                id IN (SELECT author_id FROM posts
                       WHERE parent_id = $1 AND post_type = 'comment')
                OR id = (SELECT author_id FROM posts WHERE id = $1)
            )
            AND id <> $2
            ORDER BY id
        `
		args = []any{*post.ParentID, excludeUserID}
	} else {
		query = `
            SELECT DISTINCT ` + userColumns + `
            FROM users
            WHERE id IN (SELECT author_id FROM posts WHERE thread_id = $1)
              AND id <> $2
            ORDER BY id
        `
		args = []any{post.ThreadID, excludeUserID}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
