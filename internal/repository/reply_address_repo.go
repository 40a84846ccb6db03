package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"qnotify/internal/model"
)

type ReplyAddressRepository struct {
	db *pgxpool.Pool
}

func NewReplyAddressRepository(db *pgxpool.Pool) *ReplyAddressRepository {
	return &ReplyAddressRepository{db: db}
}

// Create mints a fresh single-use reply address for a user/post pair.
func (r *ReplyAddressRepository) Create(ctx context.Context, userID, postID int64, replyAction string) (*model.ReplyAddress, error) {
	addr := &model.ReplyAddress{
		Address:        newAddressToken(),
		UserID:         userID,
		PostID:         postID,
		ReplyAction:    replyAction,
		AllowedReplies: 1,
	}

	query := `
        INSERT INTO reply_addresses (address, user_id, post_id, reply_action, allowed_replies, used_count)
        VALUES ($1, $2, $3, $4, $5, 0)
        RETURNING id
    `
	err := r.db.QueryRow(ctx, query,
		addr.Address, addr.UserID, addr.PostID, addr.ReplyAction, addr.AllowedReplies,
	).Scan(&addr.ID)
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// newAddressToken produces the random local-part token. 22 hex chars of
// a uuid is plenty for single-use addresses and keeps them typeable.
func newAddressToken() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:22]
}
