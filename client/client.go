// Package client 是前端数据访问层的 Go 版本：链式构造请求，每次 Execute 只发一次 REST 调用
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"simpleink/logger"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Response mirrors the server envelope {data, error}.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
	Status int             `json:"-"`
	// Fallback is set when Data came from the fallback source instead of the API.
	Fallback bool `json:"-"`
}

// Err returns the API error message as an error, or nil.
func (r *Response) Err() error {
	if r.Error == "" {
		return nil
	}
	return &APIError{Status: r.Status, Message: r.Error}
}

// Decode unmarshals Data into v.
func (r *Response) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 {
		return errors.New("empty response data")
	}
	return json.Unmarshal(r.Data, v)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

var errServerFailure = errors.New("server failure")

// Client 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	fallback   Fallback
	breaker    *gobreaker.CircuitBreaker[*Response]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithFallback serves reads from f whenever the API cannot be reached.
// It is evaluated on every call; the next call goes to the API again.
func WithFallback(f Fallback) Option {
	return func(c *Client) { c.fallback = f }
}

// WithToken sends the token as a Bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithBreaker guards the API with a circuit breaker. While it is open, reads go
// straight to the fallback; after settings.Timeout the API is probed again.
func WithBreaker(settings gobreaker.Settings) Option {
	return func(c *Client) {
		if settings.Name == "" {
			settings.Name = "simpleink-api"
		}
		if settings.OnStateChange == nil {
			settings.OnStateChange = func(name string, from, to gobreaker.State) {
				logger.Info("Circuit breaker state transition",
					logger.String("name", name),
					logger.String("from", from.String()),
					logger.String("to", to.String()),
				)
			}
		}
		c.breaker = gobreaker.NewCircuitBreaker[*Response](settings)
	}
}

// DefaultBreakerSettings opens after 3 consecutive failures and retries after 30s.
func DefaultBreakerSettings() gobreaker.Settings {
	return gobreaker.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	return c.baseURL + "/api" + path
}

// do sends one request and decodes the envelope. Transport failures and an open
// breaker come back as errors; any HTTP answer comes back as a Response.
func (c *Client) do(ctx context.Context, method, path, contentType string, body []byte) (*Response, error) {
	if c.breaker == nil {
		return c.send(ctx, method, path, contentType, body)
	}
	resp, err := c.breaker.Execute(func() (*Response, error) {
		resp, err := c.send(ctx, method, path, contentType, body)
		if err == nil && resp.Status >= http.StatusInternalServerError {
			return resp, errServerFailure
		}
		return resp, err
	})
	if errors.Is(err, errServerFailure) {
		return resp, nil
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, method, path, contentType string, body []byte) (*Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), r)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	resp := &Response{Status: httpResp.StatusCode}
	if err := json.Unmarshal(raw, resp); err != nil {
		// 非 JSON 响应（例如反向代理的错误页）
		resp.Data = nil
		resp.Error = strings.TrimSpace(string(raw))
		if resp.Error == "" {
			resp.Error = http.StatusText(httpResp.StatusCode)
		}
	}
	if resp.Status >= 400 && resp.Error == "" {
		resp.Error = http.StatusText(resp.Status)
	}
	return resp, nil
}
