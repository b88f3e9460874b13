package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
)

// Error is the single failure shape of the gateway: transport, status,
// decode, and business-rule failures all collapse into one message.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Result is the outcome of one request: either data or an error message.
type Result struct {
	Status int
	// JSON holds the body when the response declared a JSON content type.
	JSON json.RawMessage
	// Text holds the body otherwise.
	Text string
	Err  string
}

func (r Result) OK() bool {
	return r.Err == ""
}

// Error converts a failed result into an error, nil when the request succeeded.
func (r Result) Error() error {
	if r.OK() {
		return nil
	}
	return &Error{Message: r.Err}
}

// Decode unmarshals the body into v. A text body is decoded as JSON too,
// since some endpoints return bare numbers without a JSON content type.
func (r Result) Decode(v any) error {
	if err := r.Error(); err != nil {
		return err
	}

	body := []byte(r.JSON)
	if r.JSON == nil {
		body = []byte(strings.TrimSpace(r.Text))
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

// String returns the body as text, unwrapping a JSON string if needed.
func (r Result) String() string {
	if r.JSON == nil {
		return r.Text
	}
	var s string
	if err := json.Unmarshal(r.JSON, &s); err == nil {
		return s
	}
	return string(r.JSON)
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs a single attempt against endpoint. It never returns a Go
// error: every failure is reported in Result.Err.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) Result {
	url := c.baseURL + endpoint
	reqID := uuid.NewString()
	log := logger.L().With(zap.String("request_id", reqID), zap.String("method", method), zap.String("url", url))

	log.Info("API request")
	start := time.Now()

	res := c.do(ctx, method, url, body)

	elapsed := time.Since(start)
	if !res.OK() {
		log.Error("API error", zap.Int("status", res.Status), zap.Duration("elapsed", elapsed), zap.String("error", res.Err))
		return res
	}

	log.Info("API response", zap.Int("status", res.Status), zap.Duration("elapsed", elapsed))
	if res.JSON != nil {
		log.Debug("API payload", zap.ByteString("json", res.JSON))
	} else {
		log.Debug("API payload", zap.String("text", res.Text))
	}
	return res
}

func (c *Client) do(ctx context.Context, method, url string, body any) Result {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return Result{Err: fmt.Sprintf("encoding request: %v", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{Err: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Err: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, Err: fmt.Sprintf("reading response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(data)
		if msg == "" {
			msg = resp.Status
		}
		return Result{Status: resp.StatusCode, Err: msg}
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if len(bytes.TrimSpace(data)) == 0 {
			return Result{Status: resp.StatusCode}
		}
		if !json.Valid(data) {
			return Result{Status: resp.StatusCode, Err: "decoding response: invalid JSON"}
		}
		return Result{Status: resp.StatusCode, JSON: json.RawMessage(data)}
	}

	return Result{Status: resp.StatusCode, Text: string(data)}
}
