package alert

import (
	"context"
	"time"
)

// ListOptions defines filtering and pagination for alert queries.
type ListOptions struct {
	ItemID   string
	Type     AlertType
	Severity Severity
	Since    *time.Time
	Limit    int
	Offset   int
}

// ListOption is a functional option for alert queries.
type ListOption func(*ListOptions)

// WithItem filters by owning monitoring item.
func WithItem(itemID string) ListOption {
	return func(o *ListOptions) { o.ItemID = itemID }
}

// WithType filters by alert type.
func WithType(t AlertType) ListOption {
	return func(o *ListOptions) { o.Type = t }
}

// WithSeverity filters by severity.
func WithSeverity(s Severity) ListOption {
	return func(o *ListOptions) { o.Severity = s }
}

// WithSince filters to alerts detected at or after t.
func WithSince(t time.Time) ListOption {
	return func(o *ListOptions) { o.Since = &t }
}

// WithPage sets limit and offset.
func WithPage(limit, offset int) ListOption {
	return func(o *ListOptions) {
		o.Limit = limit
		o.Offset = offset
	}
}

// ApplyListOptions applies the given options with bounded defaults.
func ApplyListOptions(opts ...ListOption) ListOptions {
	options := ListOptions{Limit: 50}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Limit <= 0 {
		options.Limit = 50
	}
	if options.Limit > 500 {
		options.Limit = 500
	}
	if options.Offset < 0 {
		options.Offset = 0
	}
	return options
}

// AlertRepository defines the persistence contract for conflict alerts.
type AlertRepository interface {
	Create(ctx context.Context, a *ConflictAlert) error
	CreateBatch(ctx context.Context, alerts []*ConflictAlert) error
	GetByID(ctx context.Context, id string) (*ConflictAlert, error)
	List(ctx context.Context, opts ...ListOption) ([]*ConflictAlert, int64, error)

	// Delete dismisses a single alert.
	Delete(ctx context.Context, id string) error

	// DeleteByItem removes every alert owned by the given monitoring item.
	// Called by the scheduler before the item itself is deleted.
	DeleteByItem(ctx context.Context, itemID string) (int64, error)

	// CountByItem returns the number of stored alerts for an item.
	CountByItem(ctx context.Context, itemID string) (int64, error)
}
