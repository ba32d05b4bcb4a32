package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrBackendUnavailable wraps every transport failure and non-2xx answer.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Client is the shared transport of the directory and evaluation clients.
type Client struct {
	BaseURL string
	Timeout time.Duration
	log     *logrus.Logger
	http    *fiber.Client
}

func NewClient(baseURL string, timeout time.Duration, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		log:     log,
		http: &fiber.Client{
			UserAgent:   "chiapas-puede-client",
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		},
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// timeoutFor picks the shorter of the configured timeout and the context deadline.
func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func (c *Client) do(ctx context.Context, agent *fiber.Agent, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, path, err)
	}
	if timeout := c.timeoutFor(ctx); timeout > 0 {
		agent.Timeout(timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, path, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrBackendUnavailable, path, code)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, c.http.Get(c.url(path)), path)
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	agent := c.http.Post(c.url(path)).JSON(payload)
	return c.do(ctx, agent, path)
}

// decode treats an empty or "null" body as absent and leaves out untouched.
func decode(body []byte, out any) (bool, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return false, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("%w: invalid json: %w", ErrBackendUnavailable, err)
	}
	return true, nil
}
