package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"qnotify/internal/model"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Insert persists a new activity record. Activities are append-only.
func (r *ActivityRepository) Insert(ctx context.Context, a *model.Activity) error {
	query := `
        INSERT INTO activities (user_id, active_at, post_id, activity_type, question_id, summary)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	return r.db.QueryRow(ctx, query,
		a.UserID, a.ActiveAt, a.PostID, string(a.Type), a.QuestionID, a.Summary,
	).Scan(&a.ID)
}

// AddRecipients attaches the recipient set to an activity. Re-adding an
// existing pair is a no-op so redeliveries stay idempotent.
func (r *ActivityRepository) AddRecipients(ctx context.Context, activityID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
        INSERT INTO activity_recipients (activity_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	for _, userID := range userIDs {
		batch.Queue(query, activityID, userID)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range userIDs {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// InsertMention records that a user was mentioned in a post.
func (r *ActivityRepository) InsertMention(ctx context.Context, m *model.Mention) error {
	query := `
        INSERT INTO mentions (mentioned_user_id, post_id, mentioned_by_id, mentioned_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.db.QueryRow(ctx, query,
		m.MentionedUserID, m.PostID, m.MentionedByID, m.MentionedAt,
	).Scan(&m.ID)
}
