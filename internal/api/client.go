// Package api provides a client for the /api/tx transaction service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is where the backend listens in a local setup.
	DefaultBaseURL = "http://localhost:8080/api"

	defaultTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "fintrack/1.0"
)

var (
	// ErrNotFound indicates the requested transaction does not exist.
	ErrNotFound = errors.New("api: not found")
	// ErrBadRequest indicates the backend rejected the request.
	ErrBadRequest = errors.New("api: bad request")
	// ErrServer indicates a 5xx response.
	ErrServer = errors.New("api: server error")
)

// Client talks to the transaction service.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a client rooted at baseURL (for example
// "http://localhost:8080/api"). An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		timeout: defaultTimeout,
		http:    &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListQuery holds the filters accepted by GET /tx. Empty fields are sent
// as empty parameters, which the backend treats as "no filter".
type ListQuery struct {
	Q        string
	From     string
	To       string
	Category string
}

// ListTransactions returns transactions matching q.
func (c *Client) ListTransactions(ctx context.Context, q ListQuery) ([]model.Transaction, error) {
	params := url.Values{}
	params.Set("q", q.Q)
	params.Set("from", q.From)
	params.Set("to", q.To)
	params.Set("category", q.Category)

	body, err := c.do(ctx, http.MethodGet, "/tx", params, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body)
}

// ListMonth returns every transaction in month m. The backend may answer
// with a bare list or a page object carrying the list in "content".
func (c *Client) ListMonth(ctx context.Context, m model.Month) ([]model.Transaction, error) {
	params := url.Values{}
	params.Set("month", m.String())

	body, err := c.do(ctx, http.MethodGet, "/tx", params, nil)
	if err != nil {
		return nil, err
	}
	return decodeList(body)
}

// Get returns a single transaction.
func (c *Client) Get(ctx context.Context, id int64) (model.Transaction, error) {
	body, err := c.do(ctx, http.MethodGet, "/tx/"+formatID(id), nil, nil)
	if err != nil {
		return model.Transaction{}, err
	}
	var p transactionPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Transaction{}, fmt.Errorf("api: parsing transaction: %w", err)
	}
	return p.toModel(), nil
}

// Summary returns the backend's summary for month m.
func (c *Client) Summary(ctx context.Context, m model.Month) (*model.SummaryPayload, error) {
	params := url.Values{}
	params.Set("month", m.String())

	body, err := c.do(ctx, http.MethodGet, "/tx/summary", params, nil)
	if err != nil {
		return nil, err
	}
	var raw summaryResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("api: parsing summary: %w", err)
	}
	return raw.toModel(), nil
}

// Insights returns the free-text narrative for month m.
func (c *Client) Insights(ctx context.Context, m model.Month) (string, error) {
	params := url.Values{}
	params.Set("month", m.String())

	body, err := c.do(ctx, http.MethodGet, "/tx/insights", params, nil)
	if err != nil {
		return "", err
	}
	var r insightResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", fmt.Errorf("api: parsing insights: %w", err)
	}
	return r.Summary, nil
}

// Create posts tx without its id and returns the stored record.
func (c *Client) Create(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	payload, err := json.Marshal(toPayload(tx))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("api: encoding transaction: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/tx", nil, payload)
	if err != nil {
		return model.Transaction{}, err
	}

	var p transactionPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return model.Transaction{}, fmt.Errorf("api: parsing created transaction: %w", err)
	}
	return p.toModel(), nil
}

// Delete removes the transaction with the given id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/tx/"+formatID(id), nil, nil)
	return err
}

// do performs a request and returns the response body.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Str("request_id", reqID).Str("method", method).Str("url", target).Err(err).Msg("request failed")
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("request_id", reqID).
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("api: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}
	return body, nil
}

// decodeList accepts a bare JSON array or an object with a "content" array.
func decodeList(body []byte) ([]model.Transaction, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.Transaction{}, nil
	}

	if trimmed[0] == '[' {
		var list []transactionPayload
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("api: parsing transactions: %w", err)
		}
		return convertAll(list), nil
	}

	var page pageResponse
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("api: parsing transaction page: %w", err)
	}
	return convertAll(page.Content), nil
}
