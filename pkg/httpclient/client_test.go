package httpclient

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"weibo-sentiment/pkg/credentials"
)

func writeTempCookies(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookie.txt")
	if err := os.WriteFile(path, []byte("SUB\tabc123\t.weibo.com\tTRUE\t/\n"), 0o600); err != nil {
		t.Fatalf("write cookie file: %v", err)
	}
	return path
}

func TestDo_SendsProfileHeadersAndCookies(t *testing.T) {
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	set, err := credentials.Load(writeTempCookies(t))
	if err != nil {
		t.Fatalf("load credentials: %v", err)
	}

	client := NewClient(AjaxClient, set)
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if gotReq.Header.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Error("Expected ajax profile to set X-Requested-With")
	}
	if gotReq.Header.Get("User-Agent") == "" {
		t.Error("Expected a browser user agent on every request")
	}
	cookie, err := gotReq.Cookie("SUB")
	if err != nil {
		t.Fatalf("Expected session cookie on request: %v", err)
	}
	if cookie.Value != "abc123" {
		t.Errorf("Unexpected cookie value %q", cookie.Value)
	}
}

func TestDo_BrowserProfileAcceptsHTML(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
	}))
	defer server.Close()

	client := NewClient(BrowserClient, nil)
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	resp.Body.Close()

	if accept == "" || accept[:9] != "text/html" {
		t.Errorf("Expected html accept header, got %q", accept)
	}
}
