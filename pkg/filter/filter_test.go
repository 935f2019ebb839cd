package filter

import (
	"context"
	"testing"

	"weibo-sentiment/pkg/domain"
)

func TestDuplicateFilter(t *testing.T) {
	comments := []domain.RawComment{
		{ScreenName: "alice", CreatedAt: "t1", Text: "hello"},
		{ScreenName: "bob", CreatedAt: "t1", Text: "hello"},
		{ScreenName: "alice", CreatedAt: "t1", Text: "hello"},
		{ScreenName: "alice", CreatedAt: "t2", Text: "hello"},
	}

	filtered, err := FilterComments(context.Background(), comments, NewDuplicateFilter())
	if err != nil {
		t.Fatalf("FilterComments failed: %v", err)
	}

	if len(filtered) != 3 {
		t.Fatalf("Expected 3 comments after dedup, got %d", len(filtered))
	}
	// First copy wins; later identical records are dropped.
	if filtered[0].ScreenName != "alice" || filtered[1].ScreenName != "bob" {
		t.Errorf("Unexpected order: %+v", filtered)
	}
}

func TestFilterComments_NoFilters(t *testing.T) {
	comments := []domain.RawComment{{Text: "a"}, {Text: "a"}}

	filtered, err := FilterComments(context.Background(), comments)
	if err != nil {
		t.Fatalf("FilterComments failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("Expected passthrough without filters, got %d", len(filtered))
	}
}

func TestDuplicateFilter_FreshInstancePerRun(t *testing.T) {
	comment := []domain.RawComment{{ScreenName: "alice", CreatedAt: "t1", Text: "hello"}}

	first, _ := FilterComments(context.Background(), comment, NewDuplicateFilter())
	second, _ := FilterComments(context.Background(), comment, NewDuplicateFilter())

	if len(first) != 1 || len(second) != 1 {
		t.Errorf("Expected each fresh filter to keep the record: %d, %d", len(first), len(second))
	}
}
