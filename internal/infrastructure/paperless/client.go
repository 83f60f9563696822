package paperless

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/resilience"
)

// Client talks to one Paperless-NGX instance. It keeps no local state
// beyond the connection settings; all effects are outbound HTTP calls.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	executor   *resilience.Executor
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit uploads one document and returns the backend task id used to
// poll consumption status.
func (c *Client) Submit(ctx context.Context, filename, mimeType string, body io.Reader) (string, error) {
	payload, contentType, err := encodeUploadForm(filename, mimeType, body)
	if err != nil {
		return "", fmt.Errorf("encode upload form: %w", err)
	}

	var taskID string
	call := func(callCtx context.Context) error {
		id, callErr := c.postDocument(callCtx, payload, contentType)
		if callErr != nil {
			return callErr
		}
		taskID = id
		return nil
	}

	if err := c.execute(ctx, "paperless.submit", call); err != nil {
		return "", wrapTransportIfNeeded("submit document", err)
	}
	return taskID, nil
}

// TaskStatus looks up a consumption task. A 404 means the job is not
// visible yet or already expired, reported as StatusUnknown rather than
// an error.
func (c *Client) TaskStatus(ctx context.Context, taskID string) (domain.JobStatus, error) {
	status := domain.StatusUnknown
	call := func(callCtx context.Context) error {
		st, callErr := c.getTaskStatus(callCtx, taskID)
		if callErr != nil {
			return callErr
		}
		status = st
		return nil
	}

	if err := c.execute(ctx, "paperless.task_status", call); err != nil {
		return domain.StatusUnknown, wrapTransportIfNeeded("get task status", err)
	}
	return status, nil
}

// Search runs a full-text query against the document index.
func (c *Client) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	var result domain.SearchResult
	call := func(callCtx context.Context) error {
		res, callErr := c.searchDocuments(callCtx, query)
		if callErr != nil {
			return callErr
		}
		result = res
		return nil
	}

	if err := c.execute(ctx, "paperless.search", call); err != nil {
		return domain.SearchResult{}, wrapTransportIfNeeded("search documents", err)
	}
	return result, nil
}

func (c *Client) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	if c.executor == nil {
		return call(ctx)
	}
	return c.executor.Execute(ctx, operation, call, classifyBackendError)
}

func (c *Client) postDocument(ctx context.Context, payload []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/documents/post_document/", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paperless submit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", newHTTPStatusError("submit", resp)
	}

	return decodeTaskID(resp.Body)
}

// decodeTaskID accepts the two response shapes Paperless deployments
// produce: a bare JSON string with the task uuid, or an object carrying
// a task_id field.
func decodeTaskID(body io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return "", fmt.Errorf("read submit response: %w", err)
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil && asString != "" {
		return asString, nil
	}

	var asObject struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.TaskID != "" {
		return asObject.TaskID, nil
	}

	return "", fmt.Errorf("no task id in submit response: %q", strings.TrimSpace(string(raw)))
}

func (c *Client) getTaskStatus(ctx context.Context, taskID string) (domain.JobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tasks/"+url.PathEscape(taskID)+"/", nil)
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("create status request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("paperless status request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.StatusUnknown, nil
	}
	if resp.StatusCode >= 300 {
		return domain.StatusUnknown, newHTTPStatusError("task_status", resp)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.StatusUnknown, fmt.Errorf("decode status response: %w", err)
	}
	return mapTaskStatus(payload.Status), nil
}

// mapTaskStatus folds the celery-style task states onto the job status
// enum. Anything unrecognized is Unknown so the tracker keeps polling.
func mapTaskStatus(raw string) domain.JobStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PENDING", "RECEIVED":
		return domain.StatusQueued
	case "STARTED", "RETRY":
		return domain.StatusProcessing
	case "SUCCESS":
		return domain.StatusCompleted
	case "FAILURE", "REVOKED":
		return domain.StatusFailed
	default:
		return domain.StatusUnknown
	}
}

func (c *Client) searchDocuments(ctx context.Context, query string) (domain.SearchResult, error) {
	endpoint := c.baseURL + "/api/documents/?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("paperless search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.SearchResult{}, newHTTPStatusError("search", resp)
	}

	var payload struct {
		Count   int `json:"count"`
		Results []struct {
			ID      int64  `json:"id"`
			Title   string `json:"title"`
			Created string `json:"created"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.SearchResult{}, fmt.Errorf("decode search response: %w", err)
	}

	result := domain.SearchResult{Total: payload.Count}
	for _, doc := range payload.Results {
		result.Documents = append(result.Documents, domain.DocumentRef{
			ID:      doc.ID,
			Title:   doc.Title,
			Created: doc.Created,
		})
	}
	return result, nil
}

func encodeUploadForm(filename, mimeType string, body io.Reader) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, "", fmt.Errorf("copy file content: %w", err)
	}
	if err := writer.WriteField("title", filename); err != nil {
		return nil, "", fmt.Errorf("write title field: %w", err)
	}
	_ = mimeType // paperless sniffs the type server-side
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form writer: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
