package crawl

import (
	"context"
	"errors"
	"fmt"
	"log"

	"weibo-sentiment/pkg/domain"
	"weibo-sentiment/pkg/pagination"
	"weibo-sentiment/pkg/search"
)

// ErrNoResults reports that a full run produced zero comments. It is a
// normal "no data found" outcome for the caller to present, not a
// failure of the run itself.
var ErrNoResults = errors.New("no comments found for keyword")

// PageDiscoverer yields search result entries page by page. An empty
// page means discovery is exhausted.
type PageDiscoverer interface {
	FetchPage(ctx context.Context, keyword string, page int) ([]search.PostHit, error)
}

// CommentSource resolves post references and serves their comment pages.
type CommentSource interface {
	ResolvePostID(ctx context.Context, ref string) (int64, error)
	FetchPage(ctx context.Context, postID int64, cursor int64) ([]domain.RawComment, int64, error)
}

// Orchestrator chains keyword discovery and per-post comment pagination
// into one ingestion run.
type Orchestrator struct {
	discovery PageDiscoverer
	comments  CommentSource
}

// NewOrchestrator creates an Orchestrator over the given sources.
func NewOrchestrator(discovery PageDiscoverer, comments CommentSource) *Orchestrator {
	return &Orchestrator{
		discovery: discovery,
		comments:  comments,
	}
}

// Run collects raw comments for a keyword until desiredCount is
// reached or both sources are exhausted. It never returns more than
// desiredCount records; fewer is a valid outcome. A run that yields
// zero records returns ErrNoResults.
//
// Failure on a single post reference (resolution or fetch) skips that
// reference and never aborts the run.
func (o *Orchestrator) Run(ctx context.Context, keyword string, desiredCount int) ([]domain.RawComment, error) {
	if desiredCount <= 0 {
		return nil, fmt.Errorf("desired count must be positive, got %d", desiredCount)
	}

	refs, err := o.discoverPosts(ctx, keyword, desiredCount)
	if err != nil {
		return nil, err
	}

	var all []domain.RawComment
	for _, ref := range refs {
		records := o.collectPost(ctx, ref)
		all = append(all, records...)

		// Overall volume cap: no point paginating further posts once
		// enough records are in hand.
		if len(all) >= desiredCount {
			break
		}
	}

	if len(all) == 0 {
		return nil, ErrNoResults
	}

	if len(all) > desiredCount {
		all = all[:desiredCount]
	}

	log.Printf("crawl: keyword %q: collected %d comments (requested %d) across %d posts", keyword, len(all), desiredCount, len(refs))
	return all, nil
}

// discoverPosts pages through search results, accumulating post
// references until their comment-count hints cover desiredCount or a
// page comes back empty.
func (o *Orchestrator) discoverPosts(ctx context.Context, keyword string, desiredCount int) ([]string, error) {
	var refs []string
	hintTotal := 0

	for page := 1; hintTotal < desiredCount; page++ {
		hits, err := o.discovery.FetchPage(ctx, keyword, page)
		if err != nil {
			if len(refs) == 0 {
				return nil, fmt.Errorf("discover posts for %q: %w", keyword, err)
			}
			// Keep what discovery already produced.
			log.Printf("crawl: search page %d failed, continuing with %d posts: %v", page, len(refs), err)
			break
		}
		if len(hits) == 0 {
			log.Printf("crawl: search exhausted at page %d", page)
			break
		}

		for _, hit := range hits {
			refs = append(refs, hit.Ref)
			hintTotal += hit.CommentCount
		}
	}

	log.Printf("crawl: discovered %d posts hinting at %d comments", len(refs), hintTotal)
	return refs, nil
}

// collectPost resolves one post reference and drains its comment pages.
// Any failure is logged and reduces to whatever was already fetched.
func (o *Orchestrator) collectPost(ctx context.Context, ref string) []domain.RawComment {
	postID, err := o.comments.ResolvePostID(ctx, ref)
	if err != nil {
		log.Printf("crawl: skipping post %s: %v", ref, err)
		return nil
	}

	records, err := pagination.Collect(ctx, func(ctx context.Context, cursor int64) ([]domain.RawComment, int64, error) {
		return o.comments.FetchPage(ctx, postID, cursor)
	})
	if err != nil {
		// Partial pages already fetched are kept.
		log.Printf("crawl: post %s (id %d): pagination stopped after %d records: %v", ref, postID, len(records), err)
	}

	return records
}
