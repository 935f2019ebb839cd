package filter

import (
	"context"
	"fmt"

	"weibo-sentiment/pkg/domain"
)

// Filter defines the interface for raw comment filtering
type Filter interface {
	ShouldKeep(ctx context.Context, comment domain.RawComment) (bool, error)
}

// FilterComments applies all filters to a list of raw comments
func FilterComments(ctx context.Context, comments []domain.RawComment, filters ...Filter) ([]domain.RawComment, error) {
	filtered := make([]domain.RawComment, 0, len(comments))

	for _, comment := range comments {
		keep := true
		for _, f := range filters {
			shouldKeep, err := f.ShouldKeep(ctx, comment)
			if err != nil {
				return nil, fmt.Errorf("filter error for comment by %s: %w", comment.ScreenName, err)
			}
			if !shouldKeep {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, comment)
		}
	}

	return filtered, nil
}

// DuplicateFilter drops repeats of a record already seen in the same
// run, keyed by author, timestamp and text. Shared or boosted posts
// surface the same comments on multiple pages; only the first copy is
// kept.
type DuplicateFilter struct {
	seen map[string]bool
}

// NewDuplicateFilter creates a new duplicate filter. The seen set is
// scoped to the filter instance, so each run needs a fresh one.
func NewDuplicateFilter() *DuplicateFilter {
	return &DuplicateFilter{
		seen: make(map[string]bool),
	}
}

// ShouldKeep returns false if an identical record was already seen
func (f *DuplicateFilter) ShouldKeep(ctx context.Context, comment domain.RawComment) (bool, error) {
	key := comment.ScreenName + "\x00" + comment.CreatedAt + "\x00" + comment.Text
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}
