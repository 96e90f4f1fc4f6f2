package api

import (
	"context"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rescale/rescale-browse/internal/config"
)

func newTestClient(t *testing.T, handler nethttp.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(&config.Config{
		APIBaseURL: srv.URL + "/",
		APIKey:     "test-key",
		ProxyMode:  "no-proxy",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

// TestNewClientRejectsEmptyBaseURL verifies that NewClient fails with a clear error
// when APIBaseURL is empty, instead of creating a broken client that produces
// "unsupported protocol scheme" errors on every request.
func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	cfg := &config.Config{
		APIBaseURL: "",
		APIKey:     "test-key",
		ProxyMode:  "no-proxy",
	}

	_, err := NewClient(cfg)
	if err == nil {
		t.Fatal("NewClient() should return error for empty APIBaseURL")
	}

	if !strings.Contains(err.Error(), "API base URL is empty") {
		t.Errorf("NewClient() error = %q, want error containing 'API base URL is empty'", err.Error())
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client, err := NewClient(&config.Config{
		APIBaseURL: "https://platform.rescale.com/",
		APIKey:     "test-key",
		ProxyMode:  "no-proxy",
	})
	if err != nil {
		t.Fatalf("NewClient() error = %v, want nil", err)
	}
	if got := client.BaseURL(); got != "https://platform.rescale.com" {
		t.Errorf("BaseURL() = %q", got)
	}
}

func TestListFolderContentsPage(t *testing.T) {
	client := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/api/v3/folders/abc/contents/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("page") != "3" || q.Get("page_size") != "50" || q.Get("ordering") != "-name" || q.Get("search") != "mesh" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{
			"count": 120,
			"next": "https://x/api/v3/folders/abc/contents/?page=4",
			"results": [
				{"type": "folder", "item": {"id": "f1", "name": "results", "dateInserted": "2025-01-01T00:00:00Z"}},
				{"type": "file", "item": {"id": "x1", "name": "mesh.dat", "decryptedSize": 2048}},
				{"type": "shortcut", "item": {"id": "s1"}}
			]
		}`)
	})

	page, err := client.ListFolderContentsPage(context.Background(), "abc", PageOptions{
		Page: 3, PageSize: 50, Ordering: "-name", Search: "mesh",
	})
	if err != nil {
		t.Fatalf("ListFolderContentsPage() error = %v", err)
	}
	if page.Count != 120 {
		t.Errorf("Count = %d, want 120", page.Count)
	}
	if len(page.Results) != 3 {
		t.Fatalf("expected unknown entry types to keep their slot, got %d results", len(page.Results))
	}
	if other := page.Results[2]; other.Type != "shortcut" || other.ID != "s1" || other.File != nil || other.Folder != nil {
		t.Errorf("third entry = %+v", other)
	}
	if !page.Results[0].IsFolder() || page.Results[0].Folder.Name != "results" {
		t.Errorf("first entry = %+v", page.Results[0])
	}
	if f := page.Results[1].File; f == nil || f.DecryptedSize != 2048 {
		t.Errorf("second entry = %+v", page.Results[1])
	}
}

func TestListJobsPage(t *testing.T) {
	client := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/api/v3/jobs/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Has("search") {
			t.Error("empty search should not be sent")
		}
		_, _ = io.WriteString(w, `{"count": 2, "results": [
			{"id": "j1", "name": "cfd", "jobStatus": {"content": "Completed"}, "dateInserted": "2025-02-01T00:00:00Z"},
			{"id": "j2", "name": "fea", "jobStatus": {"content": "Executing"}}
		]}`)
	})

	page, err := client.ListJobsPage(context.Background(), PageOptions{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ListJobsPage() error = %v", err)
	}
	if page.Count != 2 || len(page.Results) != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Results[0].JobStatus.Status != "Completed" {
		t.Errorf("status = %q", page.Results[0].JobStatus.Status)
	}
}

func TestCreateFolder(t *testing.T) {
	client := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost || r.URL.Path != "/api/v3/folders/parent/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"name":"New folder"`) {
			t.Errorf("unexpected body %s", body)
		}
		w.WriteHeader(nethttp.StatusCreated)
		_, _ = io.WriteString(w, `{"id": "new1"}`)
	})

	id, err := client.CreateFolder(context.Background(), "New folder", "parent")
	if err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}
	if id != "new1" {
		t.Errorf("id = %q, want new1", id)
	}
}

func TestErrorStatuses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		sentinel  error
		retryable bool
	}{
		{"unauthorized", nethttp.StatusUnauthorized, ErrUnauthorized, false},
		{"forbidden", nethttp.StatusForbidden, ErrUnauthorized, false},
		{"not found", nethttp.StatusNotFound, ErrNotFound, false},
		{"bad request", nethttp.StatusBadRequest, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(w nethttp.ResponseWriter, r *nethttp.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, `{"detail": "nope"}`)
			})

			_, err := client.ListJobsPage(context.Background(), PageOptions{})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d", apiErr.StatusCode)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("expected errors.Is(err, %v)", tt.sentinel)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable() = %v", !tt.retryable)
			}
			if calls != 1 {
				t.Errorf("non-retryable status was sent %d times", calls)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"throttled", &APIError{StatusCode: 429}, true},
		{"bad gateway", &APIError{StatusCode: 502}, true},
		{"transport", errors.New("connection reset by peer"), true},
	}

	for _, tt := range tests {
		if got := IsRetryable(tt.err); got != tt.want {
			t.Errorf("%s: IsRetryable() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
