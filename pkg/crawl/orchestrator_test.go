package crawl

import (
	"context"
	"errors"
	"testing"

	"weibo-sentiment/pkg/domain"
	"weibo-sentiment/pkg/search"
)

// mockDiscovery serves canned search pages keyed by page number.
type mockDiscovery struct {
	pages map[int][]search.PostHit
	err   error
}

func (m *mockDiscovery) FetchPage(ctx context.Context, keyword string, page int) ([]search.PostHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pages[page], nil
}

// mockComments serves a fixed set of comments per post reference in a
// single page, and fails resolution for refs listed in badRefs.
type mockComments struct {
	commentsPerRef map[string][]domain.RawComment
	badRefs        map[string]bool
	refsByID       map[int64]string
	nextID         int64
}

func newMockComments() *mockComments {
	return &mockComments{
		commentsPerRef: map[string][]domain.RawComment{},
		badRefs:        map[string]bool{},
		refsByID:       map[int64]string{},
	}
}

func (m *mockComments) add(ref string, count int) {
	comments := make([]domain.RawComment, count)
	for i := range comments {
		comments[i] = domain.RawComment{Text: ref, ScreenName: "user"}
	}
	m.commentsPerRef[ref] = comments
}

func (m *mockComments) ResolvePostID(ctx context.Context, ref string) (int64, error) {
	if m.badRefs[ref] {
		return 0, errors.New("resolution refused")
	}
	m.nextID++
	m.refsByID[m.nextID] = ref
	return m.nextID, nil
}

func (m *mockComments) FetchPage(ctx context.Context, postID int64, cursor int64) ([]domain.RawComment, int64, error) {
	if cursor != 0 {
		return nil, 0, nil
	}
	return m.commentsPerRef[m.refsByID[postID]], 0, nil
}

func TestRun_TruncatesToDesiredCount(t *testing.T) {
	discovery := &mockDiscovery{pages: map[int][]search.PostHit{
		1: {{Ref: "post-aaaa1", CommentCount: 30}, {Ref: "post-bbbb2", CommentCount: 30}},
	}}
	comments := newMockComments()
	comments.add("post-aaaa1", 8)
	comments.add("post-bbbb2", 8)

	o := NewOrchestrator(discovery, comments)
	records, err := o.Run(context.Background(), "topic", 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(records) != 10 {
		t.Fatalf("Expected exactly 10 records, got %d", len(records))
	}
}

func TestRun_FewerThanRequestedIsValid(t *testing.T) {
	discovery := &mockDiscovery{pages: map[int][]search.PostHit{
		1: {{Ref: "post-aaaa1", CommentCount: 100}},
	}}
	comments := newMockComments()
	comments.add("post-aaaa1", 3)

	o := NewOrchestrator(discovery, comments)
	records, err := o.Run(context.Background(), "topic", 50)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("Expected 3 records, got %d", len(records))
	}
}

func TestRun_NoResults(t *testing.T) {
	discovery := &mockDiscovery{pages: map[int][]search.PostHit{}}
	o := NewOrchestrator(discovery, newMockComments())

	_, err := o.Run(context.Background(), "obscure topic", 20)
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("Expected ErrNoResults, got %v", err)
	}
}

func TestRun_SkipsUnresolvablePost(t *testing.T) {
	discovery := &mockDiscovery{pages: map[int][]search.PostHit{
		1: {{Ref: "post-aaaa1", CommentCount: 50}, {Ref: "post-bbbb2", CommentCount: 50}},
	}}
	comments := newMockComments()
	comments.badRefs["post-aaaa1"] = true
	comments.add("post-bbbb2", 5)

	o := NewOrchestrator(discovery, comments)
	records, err := o.Run(context.Background(), "topic", 20)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(records) != 5 {
		t.Fatalf("Expected 5 records from the surviving post, got %d", len(records))
	}
	for _, r := range records {
		if r.Text != "post-bbbb2" {
			t.Errorf("Record from unexpected post: %+v", r)
		}
	}
}

func TestRun_AllPostsFailIsNoResults(t *testing.T) {
	discovery := &mockDiscovery{pages: map[int][]search.PostHit{
		1: {{Ref: "post-aaaa1", CommentCount: 50}},
	}}
	comments := newMockComments()
	comments.badRefs["post-aaaa1"] = true

	o := NewOrchestrator(discovery, comments)
	if _, err := o.Run(context.Background(), "topic", 20); !errors.Is(err, ErrNoResults) {
		t.Fatalf("Expected ErrNoResults when every post fails, got %v", err)
	}
}

func TestRun_DiscoveryErrorOnFirstPage(t *testing.T) {
	discovery := &mockDiscovery{err: errors.New("search unavailable")}
	o := NewOrchestrator(discovery, newMockComments())

	_, err := o.Run(context.Background(), "topic", 20)
	if err == nil || errors.Is(err, ErrNoResults) {
		t.Fatalf("Expected the discovery error to propagate, got %v", err)
	}
}

func TestRun_RejectsNonPositiveCount(t *testing.T) {
	o := NewOrchestrator(&mockDiscovery{}, newMockComments())
	if _, err := o.Run(context.Background(), "topic", 0); err == nil {
		t.Fatal("Expected error for zero desired count, got nil")
	}
}
