package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/store"
)

// ClientConfig holds configuration for creating a Client
type ClientConfig struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:8080".
	BaseURL string
	// HTTPClient is used for all requests. If nil, a client with a 10s timeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Retries is how many times an idempotent read is retried on a
	// transport error or 5xx response.
	Retries uint64
}

// Client is a TaskStore backed by a taskflow REST server
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	retries    uint64
}

var _ store.TaskStore = (*Client)(nil)

// StatusError is a non-2xx response that does not map to a store error
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// NewClient creates a client for the server at config.BaseURL
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("api: BaseURL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		retries:    config.Retries,
	}, nil
}

// GetAll returns every task in insertion order
func (c *Client) GetAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := c.get(ctx, "/api/tasks", nil, &tasks)
	return tasks, err
}

// GetByID returns nil and no error when the server has no such task
func (c *Client) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := c.get(ctx, "/api/tasks/"+url.PathEscape(id), nil, &task)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) Create(ctx context.Context, task model.Task) (model.Task, error) {
	var created model.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, task, &created)
	return created, err
}

func (c *Client) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	var updated model.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), nil, patch, &updated)
	if err != nil {
		return model.Task{}, fmt.Errorf("update %s: %w", id, err)
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

func (c *Client) BulkDelete(ctx context.Context, ids []string) (int, error) {
	var resp bulkDeleteResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks/bulk-delete", nil, bulkDeleteRequest{IDs: ids}, &resp); err != nil {
		return 0, fmt.Errorf("bulk delete: %w", err)
	}
	return resp.Removed, nil
}

func (c *Client) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks/"+url.PathEscape(id)+"/toggle", nil, nil, &task); err != nil {
		return model.Task{}, fmt.Errorf("toggle %s: %w", id, err)
	}
	return task, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]model.Task, error) {
	if strings.TrimSpace(query) == "" {
		return c.GetAll(ctx)
	}
	var tasks []model.Task
	err := c.get(ctx, "/api/tasks", url.Values{"q": {query}}, &tasks)
	return tasks, err
}

func (c *Client) GetByFilter(ctx context.Context, filter model.Filter) ([]model.Task, error) {
	var tasks []model.Task
	err := c.get(ctx, "/api/tasks", url.Values{"filter": {string(filter)}}, &tasks)
	return tasks, err
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := c.get(ctx, "/api/categories", nil, &categories)
	return categories, err
}

// get performs an idempotent read, retrying transient failures
func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, http.MethodGet, path, query, nil, out)
		if isTransient(err) {
			c.logger.Debug("retrying request", "path", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
// A 404 carrying the server's JSON error body becomes store.ErrNotFound;
// any other 404 means the route itself is missing.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("api: failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: request to %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("api: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) != nil || errResp.Error == "" {
			return &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		}
		if resp.StatusCode == http.StatusNotFound && errResp.Error == taskNotFound {
			return store.ErrNotFound
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("api: failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}
