package replication

import (
	"strings"
	"testing"

	"weibo-sentiment/pkg/domain"
)

func storedComment(userID int64, createdAt, screenName, text string) domain.StoredComment {
	return domain.StoredComment{
		UserID: userID,
		Comment: domain.Comment{
			CreatedAt:  createdAt,
			ScreenName: screenName,
			Text:       text,
		},
	}
}

func TestFilterNewComments(t *testing.T) {
	a := storedComment(1, "2025-11-12 10:00:00", "alice", "first")
	b := storedComment(1, "2025-11-12 11:00:00", "bob", "second")
	c := storedComment(2, "2025-11-12 10:00:00", "alice", "first")

	existing := map[string]bool{naturalKey(a): true}

	out := filterNewComments([]domain.StoredComment{a, b, c}, existing)
	if len(out) != 2 {
		t.Fatalf("Expected 2 new comments, got %d", len(out))
	}
	// Same comment under a different user is a different natural key.
	if out[0].ScreenName != "bob" || out[1].UserID != 2 {
		t.Errorf("Unexpected survivors: %+v", out)
	}
}

func TestFilterNewComments_NilExisting(t *testing.T) {
	a := storedComment(1, "2025-11-12 10:00:00", "alice", "first")

	out := filterNewComments([]domain.StoredComment{a}, nil)
	if len(out) != 1 {
		t.Fatalf("Expected comment kept with nil existing set, got %d", len(out))
	}
}

func TestBuildExistingQuery(t *testing.T) {
	batch := []domain.StoredComment{
		storedComment(1, "2025-11-12 10:00:00", "alice", "first"),
		storedComment(2, "2025-11-12 11:00:00", "bob", "second"),
	}

	query, args := buildExistingQuery(batch)

	if !strings.Contains(query, "($1, $2, $3, $4), ($5, $6, $7, $8)") {
		t.Errorf("Expected two row-value tuples, got:\n%s", query)
	}
	if len(args) != 8 {
		t.Fatalf("Expected 8 args, got %d", len(args))
	}
	if args[0] != int64(1) || args[4] != int64(2) {
		t.Errorf("Unexpected user id args: %v", args)
	}
	if args[3] != "first" || args[7] != "second" {
		t.Errorf("Unexpected text args: %v", args)
	}
}

func TestNewReplicator_RequiresBothEnds(t *testing.T) {
	if _, err := NewReplicator(Config{}); err == nil {
		t.Fatal("Expected error for missing dependencies, got nil")
	}
}
