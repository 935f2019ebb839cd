package replication

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"

	"weibo-sentiment/pkg/db"
	"weibo-sentiment/pkg/domain"
)

// Config wires the replication dependencies.
type Config struct {
	Mongo    *db.MongoStore
	Postgres db.DBProvider
}

// Replicator copies stored comments from MongoDB to Postgres.
//
// This is intentionally a one-shot, "copy everything" flow: rows
// already present in Postgres under their natural key are skipped, so
// re-running it is safe.
type Replicator struct {
	mongo *db.MongoStore
	pg    db.DBProvider
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Mongo == nil {
		return nil, fmt.Errorf("mongo store is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	return &Replicator{
		mongo: cfg.Mongo,
		pg:    cfg.Postgres,
	}, nil
}

// ReplicateCommentsMongoToPostgres reads all comments from Mongo and
// inserts the ones Postgres does not already hold. Sentiment results
// travel with the rows, so replicated comments need no re-scoring.
func (r *Replicator) ReplicateCommentsMongoToPostgres(ctx context.Context) error {
	if err := db.NewSQLStore(r.pg).Init(ctx); err != nil {
		return err
	}

	comments, err := r.mongo.AllComments(ctx)
	if err != nil {
		return err
	}

	log.Printf("Loaded %d comments from Mongo, processing in batches...", len(comments))

	processed, inserted, err := r.processBatches(ctx, comments)
	if err != nil {
		return err
	}

	log.Printf("Replication complete: processed %d comments, inserted %d new comments", processed, inserted)
	return nil
}

// processBatches replicates all comments in parallel batches and
// returns total processed and inserted counts.
func (r *Replicator) processBatches(ctx context.Context, comments []domain.StoredComment) (int, int, error) {
	const batchSize = 100
	const numWorkers = 5

	type batchJob struct {
		batch []domain.StoredComment
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	numBatches := (len(comments) + batchSize - 1) / batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(comments); start += batchSize {
		end := start + batchSize
		if end > len(comments) {
			end = len(comments)
		}
		jobs <- batchJob{batch: comments[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	totalProcessed := 0
	totalInserted := 0
	for result := range results {
		if result.err != nil {
			return totalProcessed, totalInserted, result.err
		}
		totalProcessed += result.processed
		totalInserted += result.inserted
	}

	log.Printf("Progress: processed %d/%d comments, inserted %d new comments", totalProcessed, len(comments), totalInserted)
	return totalProcessed, totalInserted, nil
}

// processBatch replicates a single batch: checks which natural keys
// Postgres already holds, filters the rest, and inserts them.
func (r *Replicator) processBatch(ctx context.Context, batch []domain.StoredComment, start, end int) (int, error) {
	log.Printf("Processing batch [%d:%d] (%d comments)...", start, end, len(batch))

	existing, err := r.existingKeys(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("check existing comments for batch [%d:%d]: %w", start, end, err)
	}

	toInsert := filterNewComments(batch, existing)
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := r.insertCommentsTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}

	return len(toInsert), nil
}

// naturalKey joins the fields the store treats as a comment's identity.
func naturalKey(c domain.StoredComment) string {
	return fmt.Sprintf("%d\x00%s\x00%s\x00%s", c.UserID, c.CreatedAt, c.ScreenName, c.Text)
}

// existingKeys returns the natural keys from the batch that Postgres
// already holds.
func (r *Replicator) existingKeys(ctx context.Context, batch []domain.StoredComment) (map[string]bool, error) {
	if r.pg.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	if len(batch) == 0 {
		return map[string]bool{}, nil
	}

	query, args := buildExistingQuery(batch)
	rows, err := r.pg.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing comments: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var c domain.StoredComment
		if err := rows.Scan(&c.UserID, &c.CreatedAt, &c.ScreenName, &c.Text); err != nil {
			return nil, fmt.Errorf("scan comment key: %w", err)
		}
		set[naturalKey(c)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

// buildExistingQuery builds a row-value IN query over the batch's
// natural keys and returns the query string and arguments.
func buildExistingQuery(batch []domain.StoredComment) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT user_id, created_at, screen_name, text
FROM comment_data
WHERE (user_id, created_at, screen_name, text) IN (`)

	args := make([]interface{}, 0, len(batch)*4)
	for i, c := range batch {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", len(args)+1, len(args)+2, len(args)+3, len(args)+4)
		args = append(args, c.UserID, c.CreatedAt, c.ScreenName, c.Text)
	}
	sb.WriteString(")")
	return sb.String(), args
}

func filterNewComments(all []domain.StoredComment, existing map[string]bool) []domain.StoredComment {
	if existing == nil {
		existing = map[string]bool{}
	}

	out := make([]domain.StoredComment, 0, len(all))
	for _, c := range all {
		if existing[naturalKey(c)] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// insertCommentsTx inserts a batch of comments within a transaction.
func (r *Replicator) insertCommentsTx(ctx context.Context, batch []domain.StoredComment) error {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertQuery = `
INSERT INTO comment_data
	(user_id, created_at, text, source, screen_name, description,
	 sentiment_score, sentiment_label, crawl_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range batch {
		_, err := stmt.ExecContext(ctx, c.UserID, c.CreatedAt, c.Text, c.Source,
			c.ScreenName, c.Desc, c.SentimentScore, c.SentimentLabel, c.CrawlTime)
		if err != nil {
			return fmt.Errorf("insert comment user=%d created_at=%q: %w", c.UserID, c.CreatedAt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
