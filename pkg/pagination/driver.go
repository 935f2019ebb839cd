package pagination

import (
	"context"

	"weibo-sentiment/pkg/domain"
)

// PageFetchFunc fetches one page of comments at the given continuation
// cursor and returns the records plus the next cursor. A zero next
// cursor signals exhaustion.
type PageFetchFunc func(ctx context.Context, cursor int64) ([]domain.RawComment, int64, error)

// Collect drives fetch from cursor 0 until the cursor is exhausted,
// concatenating all fetched records in fetch order. If a page fetch
// fails mid-stream, the records collected so far are returned together
// with the error: the caller keeps the partial result and skips the
// post's remaining pages.
//
// There is no iteration bound beyond cursor exhaustion; the caller is
// responsible for an overall volume cap.
func Collect(ctx context.Context, fetch PageFetchFunc) ([]domain.RawComment, error) {
	var all []domain.RawComment
	var cursor int64

	for {
		records, next, err := fetch(ctx, cursor)
		if err != nil {
			return all, err
		}
		all = append(all, records...)

		if next == 0 {
			return all, nil
		}
		cursor = next
	}
}
