package comments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"weibo-sentiment/pkg/domain"
	"weibo-sentiment/pkg/httpclient"
)

// PageSize is the fixed number of comments requested per page.
const PageSize = 20

// ErrResolution reports that a post reference could not be resolved to
// a canonical post id. The caller skips that post and continues.
var ErrResolution = errors.New("post reference has no resolvable id")

// Fetcher resolves post references and fetches comment pages from the
// JSON comment endpoints.
type Fetcher struct {
	client  *httpclient.HTTPClient
	baseURL string
}

// NewFetcher creates a Fetcher against the given API base URL
// (e.g. "https://weibo.com").
func NewFetcher(client *httpclient.HTTPClient, baseURL string) *Fetcher {
	return &Fetcher{
		client:  client,
		baseURL: baseURL,
	}
}

// ResolvePostID resolves an opaque post reference into the canonical
// numeric post id required by the comment endpoint.
func (f *Fetcher) ResolvePostID(ctx context.Context, ref string) (int64, error) {
	reqURL := fmt.Sprintf("%s/ajax/statuses/show?%s", f.baseURL, url.Values{
		"id":            {ref},
		"locale":        {"zh-CN"},
		"isGetLongText": {"true"},
	}.Encode())

	var payload struct {
		ID *json.Number `json:"id"`
	}
	if err := f.getJSON(ctx, reqURL, &payload); err != nil {
		return 0, fmt.Errorf("resolve post %s: %w", ref, err)
	}

	if payload.ID == nil {
		return 0, fmt.Errorf("resolve post %s: %w", ref, ErrResolution)
	}

	id, err := payload.ID.Int64()
	if err != nil {
		return 0, fmt.Errorf("resolve post %s: non-numeric id %q: %w", ref, payload.ID.String(), ErrResolution)
	}

	return id, nil
}

// commentPayload is one element of the endpoint's data array. The user
// object is required: a record without one cannot be mapped.
type commentPayload struct {
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
	Source    string `json:"source"`
	User      *struct {
		ScreenName string `json:"screen_name"`
		Desc       string `json:"description"`
	} `json:"user"`
}

// FetchPage fetches one page of comments for a post, newest first,
// starting at the given continuation cursor. It returns the records
// that mapped cleanly plus the next cursor; a zero next cursor means
// the post's comments are exhausted. Records that fail to map are
// dropped individually without aborting the page.
func (f *Fetcher) FetchPage(ctx context.Context, postID int64, cursor int64) ([]domain.RawComment, int64, error) {
	reqURL := fmt.Sprintf("%s/ajax/statuses/buildComments?%s", f.baseURL, url.Values{
		"is_asc":           {"0"},
		"is_reload":        {"1"},
		"id":               {strconv.FormatInt(postID, 10)},
		"is_show_bulletin": {"1"},
		"is_mix":           {"0"},
		"max_id":           {strconv.FormatInt(cursor, 10)},
		"count":            {strconv.Itoa(PageSize)},
		"fetch_level":      {"0"},
		"locale":           {"zh-CN"},
	}.Encode())

	var payload struct {
		Data  []json.RawMessage `json:"data"`
		MaxID int64             `json:"max_id"`
	}
	if err := f.getJSON(ctx, reqURL, &payload); err != nil {
		return nil, 0, fmt.Errorf("fetch comments for post %d (cursor %d): %w", postID, cursor, err)
	}

	records := make([]domain.RawComment, 0, len(payload.Data))
	for i, raw := range payload.Data {
		var item commentPayload
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Printf("comments: post %d: dropping record %d: %v", postID, i, err)
			continue
		}
		if item.User == nil {
			log.Printf("comments: post %d: dropping record %d: missing user", postID, i)
			continue
		}

		records = append(records, domain.RawComment{
			CreatedAt:  item.CreatedAt,
			Text:       item.Text,
			Source:     item.Source,
			ScreenName: item.User.ScreenName,
			Desc:       item.User.Desc,
		})
	}

	return records, payload.MaxID, nil
}

// getJSON performs an authenticated GET and decodes the JSON response
// into out.
func (f *Fetcher) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
