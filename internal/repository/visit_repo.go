package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// visitExecer is the slice of pgxpool.Pool the visit repository uses.
type visitExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type VisitRepository struct {
	db visitExecer
}

func NewVisitRepository(db visitExecer) *VisitRepository {
	return &VisitRepository{db: db}
}

// RecordVisit upserts the per-user visit cursor and marks the user's
// pending feed entries and mentions on that question as seen. Both
// feed the response counter, so skipping either would leave it
// permanently elevated after a visit.
func (r *VisitRepository) RecordVisit(ctx context.Context, userID, questionPostID int64, at time.Time) error {
	upsert := `
        INSERT INTO question_visits (user_id, question_post_id, visited_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, question_post_id)
        DO UPDATE SET visited_at = EXCLUDED.visited_at
    `
	if _, err := r.db.Exec(ctx, upsert, userID, questionPostID, at); err != nil {
		return err
	}

	markSeen := `
        UPDATE activity_recipients ar
        SET seen = true
        FROM activities a
        WHERE ar.activity_id = a.id
          AND ar.user_id = $1
          AND a.question_id = $2
          AND ar.seen = false
    `
	if _, err := r.db.Exec(ctx, markSeen, userID, questionPostID); err != nil {
		return err
	}

	markMentionsSeen := `
        UPDATE mentions m
        SET seen = true
        FROM posts p
        WHERE m.post_id = p.id
          AND m.mentioned_user_id = $1
          AND m.seen = false
          AND p.thread_id = (SELECT thread_id FROM posts WHERE id = $2)
    `
	_, err := r.db.Exec(ctx, markMentionsSeen, userID, questionPostID)
	return err
}
