package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"weibo-sentiment/pkg/httpclient"
)

const resultCard = `
<div class="card">
  <div class="from">
    <a href="%s">Nov 12</a>
    <a href="//weibo.com/other">source</a>
  </div>
  <a action-type="feed_list_comment" href="#">%s</a>
</div>`

func card(href, count string) string {
	return fmt.Sprintf(resultCard, href, count)
}

func TestExtractHits(t *testing.T) {
	html := "<html><body>" +
		card("//weibo.com/1916193382/QdsSY36xi?refer_flag=1001030103_", " 42 ") +
		card("//weibo.com/2036070420/QdrNWcmF8?refer_flag=1001030103_", "7") +
		"</body></html>"

	hits, err := ExtractHits(html)
	if err != nil {
		t.Fatalf("ExtractHits failed: %v", err)
	}

	expected := []PostHit{
		{Ref: "QdsSY36xi", CommentCount: 42},
		{Ref: "QdrNWcmF8", CommentCount: 7},
	}
	if len(hits) != len(expected) {
		t.Fatalf("Expected %d hits, got %d", len(expected), len(hits))
	}
	for i, want := range expected {
		if hits[i] != want {
			t.Errorf("Hit %d: expected %+v, got %+v", i, want, hits[i])
		}
	}
}

func TestExtractHits_SkipsShortHref(t *testing.T) {
	html := "<html><body>" +
		card("//weibo.com/short", "10") +
		card("//weibo.com/1916193382/QdsSY36xi?refer_flag=1001030103_", "3") +
		"</body></html>"

	hits, err := ExtractHits(html)
	if err != nil {
		t.Fatalf("ExtractHits failed: %v", err)
	}

	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit after skipping malformed href, got %d", len(hits))
	}
	if hits[0].Ref != "QdsSY36xi" || hits[0].CommentCount != 3 {
		t.Errorf("Unexpected surviving hit: %+v", hits[0])
	}
}

func TestExtractHits_SkipsUnparseableCount(t *testing.T) {
	html := "<html><body>" +
		card("//weibo.com/1916193382/QdsSY36xi?refer_flag=1001030103_", "comments") +
		"</body></html>"

	hits, err := ExtractHits(html)
	if err != nil {
		t.Fatalf("ExtractHits failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected no hits, got %d", len(hits))
	}
}

func TestExtractHits_EmptyPage(t *testing.T) {
	hits, err := ExtractHits("<html><body><div class='no-result'>nothing</div></body></html>")
	if err != nil {
		t.Fatalf("ExtractHits failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Expected empty slice for page without results, got %d hits", len(hits))
	}
}

func TestFetchPage(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, "<html><body>"+
			card("//weibo.com/1916193382/QdsSY36xi?refer_flag=1001030103_", "5")+
			"</body></html>")
	}))
	defer server.Close()

	d := NewDiscovery(httpclient.NewClient(httpclient.BrowserClient, nil), server.URL)
	hits, err := d.FetchPage(context.Background(), "topic", 2)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if len(hits) != 1 || hits[0].Ref != "QdsSY36xi" {
		t.Fatalf("Unexpected hits: %+v", hits)
	}

	req, _ := http.NewRequest("GET", "http://x/?"+gotQuery, nil)
	q := req.URL.Query()
	if q.Get("q") != "topic" {
		t.Errorf("Expected keyword query param, got %q", q.Get("q"))
	}
	if q.Get("page") != "2" {
		t.Errorf("Expected page=2, got %q", q.Get("page"))
	}
}

func TestFetchPage_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	d := NewDiscovery(httpclient.NewClient(httpclient.BrowserClient, nil), server.URL)
	if _, err := d.FetchPage(context.Background(), "topic", 1); err == nil {
		t.Fatal("Expected error for non-200 status, got nil")
	}
}
