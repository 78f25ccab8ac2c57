// Package client is the MarkSentinel SDK: a thin typed wrapper over the HTTP
// API, used by the CLI and by external integrations.
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/MarkSentinel/pkg/errors"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// Item mirrors the monitoring item resource.
type Item struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Keywords        []string   `json:"keywords"`
	Frequency       string     `json:"frequency"`
	Status          string     `json:"status"`
	LastChecked     *time.Time `json:"last_checked,omitempty"`
	NextCheck       *time.Time `json:"next_check,omitempty"`
	AlertCount      int        `json:"alert_count"`
	LastError       string     `json:"last_error,omitempty"`
	Extensions      []string   `json:"extensions,omitempty"`
	Platforms       []string   `json:"platforms,omitempty"`
	SocialPlatforms []string   `json:"social_platforms,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Alert mirrors the conflict alert resource.
type Alert struct {
	ID               string          `json:"id"`
	MonitoringItemID string          `json:"monitoring_item_id"`
	Type             string          `json:"type"`
	DetectionKey     string          `json:"detection_key"`
	Keyword          string          `json:"keyword"`
	Platform         string          `json:"platform,omitempty"`
	Title            string          `json:"title"`
	Description      string          `json:"description,omitempty"`
	Data             common.Metadata `json:"data,omitempty"`
	Severity         string          `json:"severity"`
	DetectedAt       time.Time       `json:"detected_at"`
	ActionRequired   string          `json:"action_required,omitempty"`
}

// CreateItemRequest carries the fields for a new item.
type CreateItemRequest struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Keywords        []string `json:"keywords"`
	Frequency       string   `json:"frequency"`
	Extensions      []string `json:"extensions,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	SocialPlatforms []string `json:"social_platforms,omitempty"`
}

// ItemList is the paginated item list body.
type ItemList struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

// AlertList is the paginated alert list body.
type AlertList struct {
	Alerts []Alert `json:"alerts"`
	Total  int64   `json:"total"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marksentinel: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsNotFound reports whether the server returned 404.
func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

// Client talks to a MarkSentinel API server.
type Client struct {
	rest *resty.Client
}

// Option customizes the client.
type Option func(*Client)

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.rest.SetTimeout(d) }
}

// WithAPIKey attaches an API key header to every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.rest.SetHeader("X-Api-Key", key) }
}

// NewClient builds a client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.NewValidation("base URL is required")
	}
	c := &Client{
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do runs the request and converts non-2xx responses into *APIError.
func do(resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "request failed")
	}
	if resp.IsError() {
		apiErr, ok := resp.Error().(*APIError)
		if !ok || apiErr == nil {
			apiErr = &APIError{Message: resp.String()}
		}
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return nil
}

func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	var item Item
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&item).
		SetError(&APIError{}).
		Post("/api/v1/items")
	if err := do(resp, err); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*Item, error) {
	var item Item
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&item).
		SetError(&APIError{}).
		Get("/api/v1/items/" + id)
	if err := do(resp, err); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems fetches items filtered by type and status; empty filters match all.
func (c *Client) ListItems(ctx context.Context, itemType, status string, limit, offset int) (*ItemList, error) {
	var list ItemList
	req := c.rest.R().
		SetContext(ctx).
		SetResult(&list).
		SetError(&APIError{}).
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetQueryParam("offset", fmt.Sprint(offset))
	if itemType != "" {
		req.SetQueryParam("type", itemType)
	}
	if status != "" {
		req.SetQueryParam("status", status)
	}
	resp, err := req.Get("/api/v1/items")
	if err := do(resp, err); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/api/v1/items/" + id)
	return do(resp, err)
}

// CheckItem triggers an immediate check and returns the refreshed item.
func (c *Client) CheckItem(ctx context.Context, id string) (*Item, error) {
	var item Item
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&item).
		SetError(&APIError{}).
		Post("/api/v1/items/" + id + "/check")
	if err := do(resp, err); err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAlerts fetches alerts; itemID narrows to one item, empty fetches all.
func (c *Client) ListAlerts(ctx context.Context, itemID, severity string, limit, offset int) (*AlertList, error) {
	path := "/api/v1/alerts"
	if itemID != "" {
		path = "/api/v1/items/" + itemID + "/alerts"
	}

	var list AlertList
	req := c.rest.R().
		SetContext(ctx).
		SetResult(&list).
		SetError(&APIError{}).
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetQueryParam("offset", fmt.Sprint(offset))
	if severity != "" {
		req.SetQueryParam("severity", severity)
	}
	resp, err := req.Get(path)
	if err := do(resp, err); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DismissAlert(ctx context.Context, id string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/api/v1/alerts/" + id)
	return do(resp, err)
}
