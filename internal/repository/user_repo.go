package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"qnotify/internal/model"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
        id, username, email, status, reputation, email_signature,
        notify_instantly, response_count, created_at
`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Status, &u.Reputation,
		&u.EmailSignature, &u.NotifyInstantly, &u.ResponseCount, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID returns a user by id.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `
	return scanUser(r.db.QueryRow(ctx, query, id))
}

// ListByIDs returns the users for a set of ids. Missing ids are
// silently dropped; callers that care compare lengths.
func (r *UserRepository) ListByIDs(ctx context.Context, ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = ANY($1)
    `
	rows, err := r.db.Query(ctx, query, ids)
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

// RecalcResponseCount recomputes the user's unread-response counter
// from unseen feed recipients and unseen mentions.
func (r *UserRepository) RecalcResponseCount(ctx context.Context, userID int64) error {
	query := `
        UPDATE users
        SET response_count =
            (SELECT COUNT(*) FROM activity_recipients ar
             WHERE ar.user_id = $1 AND ar.seen = false)
            +
            (SELECT COUNT(*) FROM mentions m
             WHERE m.mentioned_user_id = $1 AND m.seen = false)
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, userID)
	return err
}

// InstantEmailSubscribers filters a candidate set down to users who
// subscribed to instant email alerts, always dropping excludeID.
func (r *UserRepository) InstantEmailSubscribers(ctx context.Context, candidateIDs []int64, excludeID int64) ([]*model.User, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = ANY($1)
          AND notify_instantly = true
          AND id <> $2
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, candidateIDs, excludeID)
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
