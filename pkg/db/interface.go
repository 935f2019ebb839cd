package db

import (
	"context"
	"database/sql"

	"weibo-sentiment/pkg/domain"
)

// DBProvider is an interface for database clients that provide access
// to a sql.DB handle. This allows both PostgresClient and
// SupabaseClient to back the SQL comment store interchangeably.
type DBProvider interface {
	DB() *sql.DB
}

// CommentStore persists normalized comments scoped by owning user.
// Every operation carries the user id: no call may ever read or write
// another user's rows.
type CommentStore interface {
	// Insert persists a batch of comments for one user. The batch is
	// all-or-nothing: any failure rolls the whole batch back.
	Insert(ctx context.Context, userID int64, comments []domain.Comment) error

	// UpdateSentiment writes sentiment results onto already-stored
	// rows, matched by the natural key (user_id, created_at,
	// screen_name, text). Records matching zero rows are silent no-ops.
	UpdateSentiment(ctx context.Context, userID int64, comments []domain.Comment) error

	// Search returns the user's comments, optionally filtered by a
	// text substring and a created_at lower bound, newest first.
	Search(ctx context.Context, userID int64, keyword, startTime string) ([]domain.StoredComment, error)
}
