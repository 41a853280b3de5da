// Package fieldservice implements the upstream source interfaces against the
// field-service REST API.
package fieldservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fieldops-reporting/internal/config"
	"github.com/fieldops-reporting/internal/domain/dispatch"
)

const dateLayout = "2006-01-02"

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the field-service API. It implements dispatch.Source,
// dispatch.DetailSource, and dispatch.UserDirectory.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient httpDoer
}

// ClientOption overrides client internals, primarily for tests.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP doer.
func WithHTTPClient(doer httpDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

func NewClient(cfg *config.FieldServiceConfig, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("field service base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid field service base URL %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// QueryDispatches fetches one page of dispatches for the window.
func (c *Client) QueryDispatches(ctx context.Context, page, pageSize int, window dispatch.Window) (*dispatch.Page, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	query.Set("dateFrom", window.From.Format(dateLayout))
	query.Set("dateTo", window.To.Format(dateLayout))

	var result dispatch.Page
	if err := c.get(ctx, "/api/dispatches", query, &result); err != nil {
		return nil, fmt.Errorf("query dispatches page %d: %w", page, err)
	}
	return &result, nil
}

// GetTimeEntries fetches the time entries of one dispatch.
func (c *Client) GetTimeEntries(ctx context.Context, dispatchID string) ([]dispatch.RawRecord, error) {
	var records []dispatch.RawRecord
	path := "/api/dispatches/" + url.PathEscape(dispatchID) + "/time-entries"
	if err := c.get(ctx, path, nil, &records); err != nil {
		return nil, fmt.Errorf("get time entries for dispatch %s: %w", dispatchID, err)
	}
	return records, nil
}

// GetExpenses fetches the expenses of one dispatch.
func (c *Client) GetExpenses(ctx context.Context, dispatchID string) ([]dispatch.RawRecord, error) {
	var records []dispatch.RawRecord
	path := "/api/dispatches/" + url.PathEscape(dispatchID) + "/expenses"
	if err := c.get(ctx, path, nil, &records); err != nil {
		return nil, fmt.Errorf("get expenses for dispatch %s: %w", dispatchID, err)
	}
	return records, nil
}

// ListTechnicians fetches the technician directory.
func (c *Client) ListTechnicians(ctx context.Context) ([]dispatch.Technician, error) {
	var technicians []dispatch.Technician
	if err := c.get(ctx, "/api/technicians", nil, &technicians); err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	return technicians, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
