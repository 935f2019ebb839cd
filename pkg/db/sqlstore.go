package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"weibo-sentiment/pkg/domain"
)

// schema mirrors the stored shape end to end: sentiment columns stay
// nullable because rows exist before classification results arrive.
const schema = `
CREATE TABLE IF NOT EXISTS comment_data (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	created_at TEXT NOT NULL,
	text TEXT NOT NULL,
	source TEXT,
	screen_name TEXT NOT NULL,
	description TEXT,
	sentiment_score DOUBLE PRECISION,
	sentiment_label TEXT,
	crawl_time TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// SQLStore implements CommentStore on top of a relational database
// reached through database/sql.
type SQLStore struct {
	provider DBProvider
}

// NewSQLStore creates a SQLStore over the given connection provider.
func NewSQLStore(provider DBProvider) *SQLStore {
	return &SQLStore{provider: provider}
}

// Init creates the comment table if it does not exist yet.
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.provider.DB().ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create comment table: %w", err)
	}
	return nil
}

// Insert persists a batch of comments for one user inside a single
// transaction; any failure rolls the whole batch back.
func (s *SQLStore) Insert(ctx context.Context, userID int64, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	tx, err := s.provider.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO comment_data
			(user_id, created_at, text, source, screen_name, description)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range comments {
		if _, err := stmt.ExecContext(ctx, userID, c.CreatedAt, c.Text, c.Source, c.ScreenName, c.Desc); err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// UpdateSentiment writes sentiment results onto stored rows matched by
// the natural key. A record matching zero rows is not an error.
func (s *SQLStore) UpdateSentiment(ctx context.Context, userID int64, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	tx, err := s.provider.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sentiment transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE comment_data
		SET sentiment_score = $1,
		    sentiment_label = $2
		WHERE user_id = $3
		  AND created_at = $4
		  AND screen_name = $5
		  AND text = $6`)
	if err != nil {
		return fmt.Errorf("prepare sentiment update: %w", err)
	}
	defer stmt.Close()

	for _, c := range comments {
		if _, err := stmt.ExecContext(ctx, c.SentimentScore, c.SentimentLabel, userID, c.CreatedAt, c.ScreenName, c.Text); err != nil {
			return fmt.Errorf("update sentiment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sentiment update: %w", err)
	}
	return nil
}

// Search returns the user's comments newest first, optionally filtered
// by a text substring and a created_at lower bound.
func (s *SQLStore) Search(ctx context.Context, userID int64, keyword, startTime string) ([]domain.StoredComment, error) {
	query, args := buildSearchQuery(userID, keyword, startTime)

	rows, err := s.provider.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var result []domain.StoredComment
	for rows.Next() {
		var c domain.StoredComment
		var source, desc sql.NullString
		var score sql.NullFloat64
		var label sql.NullString

		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.CreatedAt,
			&c.Text,
			&source,
			&c.ScreenName,
			&desc,
			&score,
			&label,
			&c.CrawlTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}

		c.Source = source.String
		c.Desc = desc.String
		c.SentimentScore = score.Float64
		c.SentimentLabel = label.String
		result = append(result, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return result, nil
}

// buildSearchQuery assembles the filtered select. The user_id filter is
// unconditional: results can never cross users. The startTime filter
// compares strings, which is safe only because the canonical timestamp
// format is fixed-width and zero-padded.
func buildSearchQuery(userID int64, keyword, startTime string) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, user_id, created_at, text, source, screen_name,
		       description, sentiment_score, sentiment_label, crawl_time
		FROM comment_data
		WHERE user_id = $1`)
	args := []interface{}{userID}

	if keyword != "" {
		args = append(args, "%"+keyword+"%")
		fmt.Fprintf(&sb, " AND text LIKE $%d", len(args))
	}
	if startTime != "" {
		args = append(args, startTime)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")
	return sb.String(), args
}
