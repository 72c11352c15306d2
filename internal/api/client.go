package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ytget/m3u8-downloader/internal/model"
)

// DefaultTimeout bounds every request that carries no earlier deadline
const DefaultTimeout = 10 * time.Second

// maxErrorBody limits how much of an error response is read
const maxErrorBody = 64 << 10

// Client talks to the download service over HTTP/JSON
type Client struct {
	baseURL string
	client  *http.Client

	// download streams can run far longer than a JSON call
	streamClient *http.Client
}

// NewClient creates a client for the service rooted at baseURL, e.g.
// "http://localhost:8000/api".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the service root the client was created with
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorBody struct {
	Detail any `json:"detail"`
}

type concurrencyRequest struct {
	MaxTasks int `json:"max_tasks"`
}

// CreateTask submits a new download and returns the service's task record
func (c *Client) CreateTask(ctx context.Context, req model.CreateRequest) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", req, &task)
	return task, err
}

// ListTasks returns every task the service knows, including recycled ones
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns the current record of one task
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task)
	return task, err
}

// PauseTask pauses a downloading task
func (c *Client) PauseTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/pause", nil, nil)
}

// ResumeTask resumes a paused task
func (c *Client) ResumeTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/resume", nil, nil)
}

// DeleteTask moves a task to the recycle bin
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(id), nil, nil)
}

// RestoreTask takes a task out of the recycle bin
func (c *Client) RestoreTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/restore", nil, nil)
}

// PurgeTask permanently deletes a task and its files
func (c *Client) PurgeTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}

// GetSystemInfo returns the service status snapshot
func (c *Client) GetSystemInfo(ctx context.Context) (model.SystemInfo, error) {
	var info model.SystemInfo
	err := c.do(ctx, http.MethodGet, "/system/info", nil, &info)
	return info, err
}

// UpdateConcurrency sets how many tasks the service runs at once
func (c *Client) UpdateConcurrency(ctx context.Context, maxTasks int) error {
	return c.do(ctx, http.MethodPost, "/system/update-concurrency", concurrencyRequest{MaxTasks: maxTasks}, nil)
}

// CleanupAll deletes every task and file on the service
func (c *Client) CleanupAll(ctx context.Context) (CleanupResult, error) {
	var result CleanupResult
	err := c.do(ctx, http.MethodPost, "/system/cleanup-all", nil, &result)
	return result, err
}

// DownloadFile streams the artifact into w. Only ctx bounds the transfer.
func (c *Client) DownloadFile(ctx context.Context, id string, w io.Writer) (int64, error) {
	op := "download " + id
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return 0, transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%s: %w", op, readAPIError(resp))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, transportError(op, err)
	}
	return n, nil
}

// do sends one JSON request. out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := strings.ToLower(method) + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %w", op, readAPIError(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed errorBody
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Detail != nil {
		switch detail := parsed.Detail.(type) {
		case string:
			apiErr.Detail = detail
		default:
			// validation errors arrive as a list of objects
			encoded, _ := json.Marshal(detail)
			apiErr.Detail = string(encoded)
		}
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(data))
	return apiErr
}
