package aisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/paperless-concierge/internal/core/domain"
	"github.com/kirillkom/paperless-concierge/internal/infrastructure/resilience"
)

// Client talks to a Paperless-AI style question endpoint. A zero-config
// client is valid and simply reports Configured() == false, which makes
// the query flow fall back to plain document search.
type Client struct {
	baseURL    string
	apiKey     string
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

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// Ask sends the question and returns the free-text answer. Failures are
// wrapped as ErrTransport so the caller can fall back to plain search.
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	if !c.Configured() {
		return "", domain.WrapError(domain.ErrTransport, "ai ask", errors.New("ai search not configured"))
	}

	var answer string
	call := func(callCtx context.Context) error {
		text, callErr := c.postChat(callCtx, question)
		if callErr != nil {
			return callErr
		}
		answer = text
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "aisearch.ask", call, classifyAskError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", domain.WrapError(domain.ErrTransport, "ai ask", err)
	}
	return answer, nil
}

func (c *Client) postChat(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		return "", fmt.Errorf("marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ask request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai ask request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("ai ask status: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	return decodeAnswer(resp.Body)
}

// decodeAnswer tolerates the response shapes different AI services use:
// answer, response, or message fields carrying the text.
func decodeAnswer(body io.Reader) (string, error) {
	var payload struct {
		Answer   string `json:"answer"`
		Response string `json:"response"`
		Message  string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode ask response: %w", err)
	}

	for _, candidate := range []string{payload.Answer, payload.Response, payload.Message} {
		if text := strings.TrimSpace(candidate); text != "" {
			return text, nil
		}
	}
	return "", errors.New("no answer in ai response")
}

func classifyAskError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
