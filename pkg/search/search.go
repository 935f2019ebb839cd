package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"weibo-sentiment/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

// Post references are a fixed-width slice of the result anchor href:
// "//weibo.com/1916193382/QdsSY36xi?refer_flag=..." carries the
// reference at a fixed offset. Anything shorter is malformed and the
// entry is skipped.
const (
	refOffset = 23
	refLength = 9
)

// PostHit is one search result entry: an opaque post reference plus the
// comment count advertised next to it.
type PostHit struct {
	Ref          string
	CommentCount int
}

// Discovery queries the keyword search source page by page and extracts
// post references with their comment-count hints.
type Discovery struct {
	client  *httpclient.HTTPClient
	baseURL string
}

// NewDiscovery creates a Discovery against the given search base URL
// (e.g. "https://s.weibo.com/weibo").
func NewDiscovery(client *httpclient.HTTPClient, baseURL string) *Discovery {
	return &Discovery{
		client:  client,
		baseURL: baseURL,
	}
}

// FetchPage fetches one page of keyword search results and returns the
// parseable entries on it. A page with no result entries returns an
// empty slice, which signals the caller to stop paging. A single
// malformed entry is skipped, never fatal for the page.
func (d *Discovery) FetchPage(ctx context.Context, keyword string, page int) ([]PostHit, error) {
	pageURL := fmt.Sprintf("%s?%s", d.baseURL, url.Values{
		"q":     {keyword},
		"Refer": {"index"},
		"page":  {strconv.Itoa(page)},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch search page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search page %d: unexpected status code: %d", page, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search page %d: %w", page, err)
	}

	return ExtractHits(string(body))
}

// ExtractHits parses a search result page and pairs each result anchor
// with its adjacent comment-count label, in document order.
func ExtractHits(html string) ([]PostHit, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}

	var hrefs []string
	doc.Find("div.from").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Find("a").First().Attr("href")
		if !exists {
			return
		}
		hrefs = append(hrefs, href)
	})

	var counts []string
	doc.Find("a[action-type='feed_list_comment']").Each(func(i int, s *goquery.Selection) {
		counts = append(counts, s.Text())
	})

	// The two lists run in parallel per result card; pair them up to
	// the shorter length.
	n := len(hrefs)
	if len(counts) < n {
		n = len(counts)
	}

	var hits []PostHit
	for i := 0; i < n; i++ {
		ref, err := extractRef(hrefs[i])
		if err != nil {
			log.Printf("search: skipping entry with malformed href %q: %v", hrefs[i], err)
			continue
		}

		count, err := strconv.Atoi(strings.TrimSpace(counts[i]))
		if err != nil {
			log.Printf("search: skipping entry %s with unparseable comment count %q", ref, counts[i])
			continue
		}

		hits = append(hits, PostHit{Ref: ref, CommentCount: count})
	}

	return hits, nil
}

// extractRef slices the fixed-width post reference out of a result
// anchor href.
func extractRef(href string) (string, error) {
	if len(href) < refOffset+refLength {
		return "", fmt.Errorf("href shorter than reference window (%d chars)", len(href))
	}
	return href[refOffset : refOffset+refLength], nil
}
