package service

import (
	"context"
	"fmt"
	"log"

	"weibo-sentiment/pkg/db"
	"weibo-sentiment/pkg/domain"
	"weibo-sentiment/pkg/filter"
	"weibo-sentiment/pkg/normalize"
)

// Crawler runs one keyword ingestion and returns the raw records.
type Crawler interface {
	Run(ctx context.Context, keyword string, desiredCount int) ([]domain.RawComment, error)
}

// Scorer assigns sentiment results to normalized comments in place.
type Scorer interface {
	ScoreComments(ctx context.Context, comments []domain.Comment)
}

// Service ties the pipeline together for one user: crawl, normalize,
// persist, classify, and merge the classification back into the store.
type Service struct {
	crawler Crawler
	scorer  Scorer
	store   db.CommentStore
}

// Config holds the collaborators of a Service.
type Config struct {
	Crawler Crawler
	Scorer  Scorer
	Store   db.CommentStore
}

// NewService creates a new comment service.
func NewService(cfg Config) *Service {
	return &Service{
		crawler: cfg.Crawler,
		scorer:  cfg.Scorer,
		store:   cfg.Store,
	}
}

// RunReport summarizes one crawl-and-store run.
type RunReport struct {
	Requested    int
	Collected    int
	Degraded     int
	Distribution map[string]int
}

// CrawlAndStore runs the full pipeline for one user and keyword. A run
// that finds nothing returns the crawler's no-results error unchanged
// so callers can distinguish "no data" from a failure.
func (s *Service) CrawlAndStore(ctx context.Context, userID int64, keyword string, count int) (*RunReport, error) {
	raw, err := s.crawler.Run(ctx, keyword, count)
	if err != nil {
		return nil, err
	}

	// Shared posts surface the same comment on multiple pages; drop
	// repeats before they reach the store.
	raw, err = filter.FilterComments(ctx, raw, filter.NewDuplicateFilter())
	if err != nil {
		return nil, fmt.Errorf("filter comments: %w", err)
	}

	comments := make([]domain.Comment, 0, len(raw))
	degraded := 0
	for _, r := range raw {
		c, timeDegraded := normalize.Normalize(r)
		if timeDegraded {
			degraded++
		}
		comments = append(comments, c)
	}

	if err := s.store.Insert(ctx, userID, comments); err != nil {
		return nil, fmt.Errorf("persist comments: %w", err)
	}

	s.scorer.ScoreComments(ctx, comments)

	if err := s.store.UpdateSentiment(ctx, userID, comments); err != nil {
		return nil, fmt.Errorf("persist sentiment results: %w", err)
	}

	report := &RunReport{
		Requested:    count,
		Collected:    len(comments),
		Degraded:     degraded,
		Distribution: make(map[string]int),
	}
	for _, c := range comments {
		report.Distribution[c.SentimentLabel]++
	}

	log.Printf("service: user %d: stored %d/%d comments for %q (%d with degraded timestamps)",
		userID, report.Collected, report.Requested, keyword, report.Degraded)
	return report, nil
}

// Search returns the user's stored comments, optionally filtered by a
// text substring and a created_at lower bound, newest first.
func (s *Service) Search(ctx context.Context, userID int64, keyword, startTime string) ([]domain.StoredComment, error) {
	return s.store.Search(ctx, userID, keyword, startTime)
}
