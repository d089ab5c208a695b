package client

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
	"time"

	"github.com/tidwall/gjson"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// DefaultServer is the backend base URL including the API prefix.
const DefaultServer = "http://localhost:8080/api/weather"

// APIError is a `{success:false}` response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the weather dashboard backend.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// New returns a client for the backend at baseURL. A nil httpClient gets a
// default with a 15s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultServer
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      httpClient,
		userAgent: "weather-cli",
	}
}

// Search looks up city and records it in the backend history.
func (c *Client) Search(ctx context.Context, city string) (gjson.Result, error) {
	return c.do(ctx, http.MethodPost, "/search", nil, map[string]string{"city": city})
}

// History lists recent searches, optionally filtered by city substring.
func (c *Client) History(ctx context.Context, city string, limit int) (gjson.Result, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.do(ctx, http.MethodGet, "/history", q, nil)
}

func (c *Client) Popular(ctx context.Context) (gjson.Result, error) {
	return c.do(ctx, http.MethodGet, "/popular", nil, nil)
}

func (c *Client) Stats(ctx context.Context) (gjson.Result, error) {
	return c.do(ctx, http.MethodGet, "/stats", nil, nil)
}

func (c *Client) ClearHistory(ctx context.Context) (gjson.Result, error) {
	return c.do(ctx, http.MethodDelete, "/history", nil, nil)
}

func (c *Client) Forecast(ctx context.Context, city string, days int) (gjson.Result, error) {
	q := url.Values{"city": {city}}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	return c.do(ctx, http.MethodGet, "/forecast", q, nil)
}

// Suggest returns city suggestions for a partial name.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]weather.Suggestion, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	res, err := c.do(ctx, http.MethodGet, "/suggest", q, nil)
	if err != nil {
		return nil, err
	}

	out := []weather.Suggestion{}
	res.Get("suggestions").ForEach(func(_, s gjson.Result) bool {
		out = append(out, weather.Suggestion{
			Name:    s.Get("name").String(),
			State:   s.Get("state").String(),
			Country: s.Get("country").String(),
			Lat:     s.Get("lat").Float(),
			Lon:     s.Get("lon").Float(),
		})
		return true
	})
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (gjson.Result, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &APIError{Status: resp.StatusCode, Message: "invalid JSON response"}
	}

	res := gjson.ParseBytes(raw)
	if resp.StatusCode >= 400 || !res.Get("success").Bool() {
		msg := res.Get("error").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return res, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return res, nil
}
