// Package client talks to a running docscrape server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lukemcguire/docscrape/api"
	"github.com/lukemcguire/docscrape/task"
)

const defaultHTTPTimeout = 30 * time.Second

// ErrNotFound is returned when the server does not know the task.
var ErrNotFound = errors.New("task not found")

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the crawl API of one server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the server at baseURL. A nil httpClient selects
// one with a default timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Scrape starts a crawl and returns its task id.
func (c *Client) Scrape(ctx context.Context, req api.ScrapeRequest) (string, error) {
	var resp api.ScrapeResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/scrape", req, &resp); err != nil {
		return "", err
	}
	return resp.TaskID, nil
}

// Progress returns the current snapshot of task id.
func (c *Client) Progress(ctx context.Context, id string) (task.Snapshot, error) {
	var snap task.Snapshot
	err := c.doJSON(ctx, http.MethodGet, "/api/progress/"+url.PathEscape(id), nil, &snap)
	return snap, err
}

// Result returns the result payload of a completed task.
func (c *Client) Result(ctx context.Context, id string) (*api.ResultResponse, error) {
	var res api.ResultResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/result/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Download copies the export of a completed task to w and returns the
// attachment name suggested by the server.
func (c *Client) Download(ctx context.Context, id string, w io.Writer) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/download/"+url.PathEscape(id), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", fmt.Errorf("read download: %w", err)
	}

	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return name, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, decodeError(resp)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := strings.TrimSpace(string(data))

	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: msg}
	if resp.StatusCode == http.StatusNotFound && strings.Contains(msg, "task not found") {
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	}
	return apiErr
}
