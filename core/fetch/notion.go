// Package fetch implements the Source interface against the Notion REST API.
// Both listing endpoints are paginated; the client follows next_cursor until
// the API reports has_more=false.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jungtin/notion-to-audio/core"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultBaseURL   = "https://api.notion.com/v1"
	defaultVersion   = "2022-06-28"
	defaultPageSize  = 100
	defaultUserAgent = "notion-to-audio/1.0"
)

// Config captures the settings required to talk to Notion.
type Config struct {
	Token    string
	BaseURL  string
	Version  string
	PageSize int
}

// NotionClient lists database rows and block children over HTTP.
type NotionClient struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// Option customizes the client.
type Option func(*NotionClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *NotionClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *NotionClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a NotionClient with a sensible timeout.
func New(cfg Config, opts ...Option) *NotionClient {
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Version == "" {
		cfg.Version = defaultVersion
	}
	if cfg.PageSize <= 0 || cfg.PageSize > defaultPageSize {
		cfg.PageSize = defaultPageSize
	}
	c := &NotionClient{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultTimeout},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion: http %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("notion: http %d: %s", e.StatusCode, e.Message)
}

type listResponse[T any] struct {
	Results    []T     `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// ListChildren returns every immediate child of blockID in API order.
func (c *NotionClient) ListChildren(ctx context.Context, blockID string) ([]core.RawBlock, error) {
	var all []core.RawBlock
	cursor := ""
	for {
		q := url.Values{}
		q.Set("page_size", strconv.Itoa(c.cfg.PageSize))
		if cursor != "" {
			q.Set("start_cursor", cursor)
		}
		endpoint := c.cfg.BaseURL + "/blocks/" + url.PathEscape(blockID) + "/children?" + q.Encode()

		var page listResponse[core.RawBlock]
		if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("listing children of %s: %w", blockID, err)
		}
		all = append(all, page.Results...)
		c.logger.Debug("listed block children", "block_id", blockID, "count", len(page.Results), "has_more", page.HasMore)

		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			return all, nil
		}
		cursor = *page.NextCursor
	}
}

type queryRequest struct {
	PageSize    int         `json:"page_size"`
	StartCursor string      `json:"start_cursor,omitempty"`
	Sorts       []querySort `json:"sorts"`
}

type querySort struct {
	Timestamp string `json:"timestamp"`
	Direction string `json:"direction"`
}

// QueryDatabase returns every row of databaseID sorted by created_time ascending.
func (c *NotionClient) QueryDatabase(ctx context.Context, databaseID string) ([]core.PageDescriptor, error) {
	var all []core.PageDescriptor
	endpoint := c.cfg.BaseURL + "/databases/" + url.PathEscape(databaseID) + "/query"
	req := queryRequest{
		PageSize: c.cfg.PageSize,
		Sorts:    []querySort{{Timestamp: "created_time", Direction: "ascending"}},
	}
	for {
		var page listResponse[core.PageDescriptor]
		if err := c.do(ctx, http.MethodPost, endpoint, req, &page); err != nil {
			return nil, fmt.Errorf("querying database %s: %w", databaseID, err)
		}
		all = append(all, page.Results...)
		c.logger.Debug("queried database", "database_id", databaseID, "count", len(page.Results), "has_more", page.HasMore)

		if !page.HasMore || page.NextCursor == nil || *page.NextCursor == "" {
			return all, nil
		}
		req.StartCursor = *page.NextCursor
	}
}

func (c *NotionClient) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", c.cfg.Version)
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			se.Code = apiErr.Code
			se.Message = apiErr.Message
		}
		return se
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
