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
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"taskcycle/internal/model"
)

const maxResponseBodySize = 1 << 20 // 1 MB

// Client implements Store over the backend's REST surface:
//
//	GET  /tasks
//	POST /tasks
//	PUT  /tasks/{id}
//
// Transient failures (network errors, 5xx) are retried with exponential
// backoff up to MaxRetries; 4xx responses are terminal, with 409 translated
// to ErrAlreadyComplete.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var payload []taskPayload
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &payload); err != nil {
		return nil, err
	}
	out := make([]model.Task, 0, len(payload))
	for _, p := range payload {
		out = append(out, p.toTask())
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in model.Task) (model.Task, error) {
	var payload taskPayload
	if err := c.do(ctx, http.MethodPost, "/tasks", fromTask(in), &payload); err != nil {
		return model.Task{}, err
	}
	return payload.toTask(), nil
}

func (c *Client) UpdateTask(ctx context.Context, in model.Task) (model.Task, error) {
	var payload taskPayload
	if err := c.do(ctx, http.MethodPut, "/tasks/"+in.ID, fromTask(in), &payload); err != nil {
		return model.Task{}, err
	}
	return payload.toTask(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var encoded []byte
	if body != nil {
		var err error
		encoded, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempt := func() error {
		var reader io.Reader
		if encoded != nil {
			reader = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out == nil {
				return nil
			}
			decoded := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize))
			if err := decoded.Decode(out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusConflict:
			return backoff.Permanent(ErrAlreadyComplete)
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(ErrNotFound)
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return backoff.Permanent(fmt.Errorf("api: %s %s: status %d", method, path, resp.StatusCode))
		default:
			return fmt.Errorf("api: %s %s: status %d", method, path, resp.StatusCode)
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), c.maxRetries), ctx)
	err := backoff.Retry(attempt, policy)
	if err != nil {
		if errors.Is(err, ErrAlreadyComplete) || errors.Is(err, ErrNotFound) {
			return err
		}
		c.logger.Warn("request gave up", "method", method, "path", path, "err", err)
		return err
	}
	return nil
}

func newBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	return bo
}
