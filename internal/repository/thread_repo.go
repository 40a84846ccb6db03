package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"qnotify/internal/model"
)

type ThreadRepository struct {
	db *pgxpool.Pool
}

func NewThreadRepository(db *pgxpool.Pool) *ThreadRepository {
	return &ThreadRepository{db: db}
}

func (r *ThreadRepository) FindByID(ctx context.Context, id int64) (*model.Thread, error) {
	query := `
        SELECT id, title, view_count
        FROM threads
        WHERE id = $1
    `
	var t model.Thread
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.ViewCount)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IncrementViewCount bumps the thread's view counter. Applies for
// anonymous viewers too; ordinary read-modify-write in SQL.
func (r *ThreadRepository) IncrementViewCount(ctx context.Context, threadID int64) error {
	query := `
        UPDATE threads
        SET view_count = view_count + 1
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, threadID)
	return err
}
