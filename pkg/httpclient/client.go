package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"weibo-sentiment/pkg/credentials"
)

// ClientType represents the header profile used for a request
type ClientType string

const (
	// BrowserClient uses full browser-like headers; required by the HTML
	// search source, which rejects plain clients
	BrowserClient ClientType = "browser"

	// AjaxClient mimics the site's own XHR requests; required by the
	// JSON comment and resolution endpoints
	AjaxClient ClientType = "ajax"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

	// Every network call is retried once after a short backoff and
	// bounded by a timeout; persistent failure surfaces to the caller
	// as an error, which the orchestrator treats as a skip.
	maxAttempts  = 2
	retryBackoff = 500 * time.Millisecond
	timeout      = 15 * time.Second
)

// HTTPClient wraps an http.Client with a header profile and the session
// cookies loaded at run start.
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	cookies    []credentials.Cookie
}

// NewClient creates a new HTTP client with the specified type and
// session credentials. The credential set is fixed for the lifetime of
// the client.
func NewClient(clientType ClientType, creds *credentials.Set) *HTTPClient {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	var cookies []credentials.Cookie
	if creds != nil {
		cookies = creds.Cookies()
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
		cookies:    cookies,
	}
}

// Do executes an HTTP request with the appropriate headers and cookies,
// retrying transport-level failures up to maxAttempts times.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	for _, cookie := range c.cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.client.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			time.Sleep(retryBackoff)
		}
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxAttempts, lastErr)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")

	switch c.clientType {
	case BrowserClient:
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Upgrade-Insecure-Requests", "1")
		req.Header.Set("Connection", "keep-alive")

	case AjaxClient:
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("X-Requested-With", "XMLHttpRequest")

	default:
		// Default: use Go's default headers beyond the common set
	}
}
