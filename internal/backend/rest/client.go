package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matthieukhl/doemart/internal/types"
)

// Client talks to a hosted PostgREST data API and its GoTrue identity service
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	storage types.SessionStorage

	mu      sync.RWMutex
	session *types.Session
	now     func() time.Time
}

func New(baseURL, apiKey string, storage types.SessionStorage) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in config or environment")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		storage: storage,
		now:     time.Now,
	}, nil
}

func (c *Client) Name() string { return "rest" }

func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.apiKey
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// queryValues renders filters, ordering, projection, and limit in PostgREST syntax
func queryValues(q types.Query) url.Values {
	values := url.Values{}
	if len(q.Columns) > 0 {
		values.Set("select", strings.Join(q.Columns, ","))
	} else {
		values.Set("select", "*")
	}
	for _, f := range q.Filters {
		values.Add(f.Column, "eq."+formatValue(f.Value))
	}
	if q.Order != nil {
		dir := "asc"
		if q.Order.Descending {
			dir = "desc"
		}
		values.Set("order", q.Order.Column+"."+dir)
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

func (c *Client) newRequest(ctx context.Context, method, path string, values url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes req and decodes a JSON body into out when out is non-nil
func (c *Client) do(req *http.Request, out any) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, decodeError(resp)
	}

	if out != nil && req.Method != http.MethodHead {
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		if err := dec.Decode(out); err != nil && err != io.EOF {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	message := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Msg, payload.ErrorDescription, payload.Error} {
			if m != "" {
				message = m
				break
			}
		}
	}

	return &types.APIError{Status: resp.StatusCode, Message: message}
}

func (c *Client) Select(ctx context.Context, collection string, q types.Query) ([]types.Row, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/"+collection, queryValues(q), nil)
	if err != nil {
		return nil, err
	}

	var rows []types.Row
	if _, err := c.do(req, &rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", collection, err)
	}
	return rows, nil
}

// Count issues a head request and reads the total from Content-Range
func (c *Client) Count(ctx context.Context, collection string, q types.Query) (int, error) {
	values := queryValues(q)
	values.Set("select", "id")
	req, err := c.newRequest(ctx, http.MethodHead, "/rest/v1/"+collection, values, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.do(req, nil)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}

	return parseContentRange(resp.Header.Get("Content-Range"))
}

func parseContentRange(header string) (int, error) {
	_, total, ok := strings.Cut(header, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("missing count in Content-Range %q", header)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("invalid count in Content-Range %q: %w", header, err)
	}
	return n, nil
}

func (c *Client) Insert(ctx context.Context, collection string, record types.Row) (types.Row, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/"+collection, nil, record)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	var rows []types.Row
	if _, err := c.do(req, &rows); err != nil {
		return nil, fmt.Errorf("insert %s: %w", collection, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert %s: no row returned", collection)
	}
	return rows[0], nil
}

func (c *Client) Update(ctx context.Context, collection string, filters []types.Filter, patch types.Row) (int, error) {
	if len(filters) == 0 {
		return 0, fmt.Errorf("update on %s requires a filter", collection)
	}

	values := queryValues(types.Query{Filters: filters})
	values.Del("select")
	req, err := c.newRequest(ctx, http.MethodPatch, "/rest/v1/"+collection, values, patch)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "return=representation")

	var rows []types.Row
	if _, err := c.do(req, &rows); err != nil {
		return 0, fmt.Errorf("update %s: %w", collection, err)
	}
	return len(rows), nil
}

// HealthCheck probes the identity service health endpoint
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/health", nil, nil)
	if err != nil {
		return err
	}
	if _, err := c.do(req, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// Compile-time interface checks
var (
	_ types.Backend       = (*Client)(nil)
	_ types.HealthChecker = (*Client)(nil)
)
