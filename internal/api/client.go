package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/rescale/rescale-browse/internal/config"
	"github.com/rescale/rescale-browse/internal/http"
	"github.com/rescale/rescale-browse/internal/models"
	"github.com/rescale/rescale-browse/internal/ratelimit"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("retry: " + msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(keysAndValues).Msg("retry: " + msg)
}

// Client represents the Rescale API client
type Client struct {
	httpClient       *nethttp.Client
	baseURL          string
	apiKey           string
	userScopeLimiter *ratelimit.RateLimiter // All v3 endpoints (user scope: 7200/hour)
	jobsUsageLimiter *ratelimit.RateLimiter // v2 job query endpoints (jobs-usage scope: 90000/hour)
}

// PageOptions selects one server page of a list endpoint.
type PageOptions struct {
	Page     int    // 1-based
	PageSize int    // at most constants.APIMaxPageSize
	Ordering string // field name, "-" prefix for descending
	Search   string
}

func (o PageOptions) values() url.Values {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(o.PageSize))
	}
	if o.Ordering != "" {
		q.Set("ordering", o.Ordering)
	}
	if o.Search != "" {
		q.Set("search", o.Search)
	}
	return q
}

// NewClient creates a new API client
func NewClient(cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("API base URL is empty: set api_base_url in the config or RESCALE_API_URL")
	}

	httpClient, err := http.ConfigureHTTPClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = 5
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 30 * time.Second
	retryClient.CheckRetry = http.CheckRetry
	retryClient.Backoff = http.Backoff
	retryClient.Logger = &retryLogger{}

	return &Client{
		httpClient:       retryClient.StandardClient(),
		baseURL:          strings.TrimSuffix(cfg.APIBaseURL, "/"),
		apiKey:           cfg.APIKey,
		userScopeLimiter: ratelimit.NewUserScopeRateLimiter(),
		jobsUsageLimiter: ratelimit.NewJobsUsageRateLimiter(),
	}, nil
}

// BaseURL returns the platform URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request with authentication and rate limiting
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*nethttp.Response, error) {
	limiter := c.userScopeLimiter
	if strings.HasPrefix(path, "/api/v2/jobs/") {
		limiter = c.jobsUsageLimiter
	}
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		log.Warn().
			Str("method", method).
			Str("path", path).
			Str("retry_after", resp.Header.Get("Retry-After")).
			Msg("throttled by the platform")
	}

	return resp, nil
}

// call sends a request, checks the status against ok and decodes the body into out.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out interface{}, ok ...int) error {
	resp, err := c.doRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, ok) {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func statusIn(code int, ok []int) bool {
	if len(ok) == 0 {
		return code == nethttp.StatusOK
	}
	for _, c := range ok {
		if c == code {
			return true
		}
	}
	return false
}

// GetUserProfile gets the current user's profile
func (c *Client) GetUserProfile(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.call(ctx, nethttp.MethodGet, "/api/v3/users/me/", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetRootFolders gets the user's root folders
func (c *Client) GetRootFolders(ctx context.Context) (*models.RootFolders, error) {
	var folders models.RootFolders
	if err := c.call(ctx, nethttp.MethodGet, "/api/v3/users/me/folders/", nil, nil, &folders); err != nil {
		return nil, err
	}
	return &folders, nil
}

// ListFolderContentsPage fetches one page of a folder's files and subfolders.
func (c *Client) ListFolderContentsPage(ctx context.Context, folderID string, opts PageOptions) (*models.FolderContentsResponse, error) {
	path := fmt.Sprintf("/api/v3/folders/%s/contents/", url.PathEscape(folderID))

	var raw struct {
		Count   int     `json:"count"`
		Next    *string `json:"next"`
		Results []struct {
			Type string          `json:"type"`
			Item json.RawMessage `json:"item"`
		} `json:"results"`
	}
	if err := c.call(ctx, nethttp.MethodGet, path, opts.values(), nil, &raw); err != nil {
		return nil, err
	}

	page := &models.FolderContentsResponse{
		Count:   raw.Count,
		Next:    raw.Next,
		Results: make([]models.FolderEntry, 0, len(raw.Results)),
	}
	for _, r := range raw.Results {
		entry := models.FolderEntry{Type: r.Type}
		switch r.Type {
		case models.EntryTypeFolder:
			var f models.Folder
			if err := json.Unmarshal(r.Item, &f); err != nil {
				return nil, fmt.Errorf("failed to decode folder entry: %w", err)
			}
			entry.Folder = &f
		case models.EntryTypeFile:
			var f models.CloudFile
			if err := json.Unmarshal(r.Item, &f); err != nil {
				return nil, fmt.Errorf("failed to decode file entry: %w", err)
			}
			entry.File = &f
		default:
			var other struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(r.Item, &other)
			entry.ID = other.ID
			log.Debug().Str("type", r.Type).Str("id", other.ID).Msg("unknown folder entry type")
		}
		page.Results = append(page.Results, entry)
	}
	return page, nil
}

// ListJobsPage fetches one page of the user's jobs.
func (c *Client) ListJobsPage(ctx context.Context, opts PageOptions) (*models.JobListResponse, error) {
	var page models.JobListResponse
	if err := c.call(ctx, nethttp.MethodGet, "/api/v3/jobs/", opts.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateFolder creates a new folder and returns its ID.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	requestBody := map[string]interface{}{
		"name": name,
	}
	path := fmt.Sprintf("/api/v3/folders/%s/", url.PathEscape(parentID))

	var result struct {
		ID string `json:"id"`
	}
	if err := c.call(ctx, nethttp.MethodPost, path, nil, requestBody, &result, nethttp.StatusCreated, nethttp.StatusOK); err != nil {
		return "", err
	}
	return result.ID, nil
}
