package monitoring

import (
	"context"
	"time"
)

// ListOptions defines filtering and pagination for item queries.
type ListOptions struct {
	Type   ItemType
	Status ItemStatus
	Limit  int
	Offset int
}

// ListOption is a functional option for item queries.
type ListOption func(*ListOptions)

// WithType filters by item type.
func WithType(t ItemType) ListOption {
	return func(o *ListOptions) { o.Type = t }
}

// WithStatus filters by item status.
func WithStatus(s ItemStatus) ListOption {
	return func(o *ListOptions) { o.Status = s }
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
	options := ListOptions{Limit: 20}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Limit <= 0 {
		options.Limit = 20
	}
	if options.Limit > 200 {
		options.Limit = 200
	}
	if options.Offset < 0 {
		options.Offset = 0
	}
	return options
}

// ItemRepository defines the persistence contract for monitoring items.
// Implementations must make the checking transition durable before returning
// so concurrent readers observe the in-flight state.
type ItemRepository interface {
	Create(ctx context.Context, item *MonitoringItem) error
	GetByID(ctx context.Context, id string) (*MonitoringItem, error)
	List(ctx context.Context, opts ...ListOption) ([]*MonitoringItem, int64, error)

	// ListDue returns items whose NextCheck is at or before now (or unset),
	// excluding items already in the checking state.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*MonitoringItem, error)

	Update(ctx context.Context, item *MonitoringItem) error

	// UpdateStatus persists only the status transition and, when non-nil,
	// lastError.  Used for the checking transition at the start of a run.
	UpdateStatus(ctx context.Context, id string, status ItemStatus, lastError *string) error

	// Delete removes the item.  Callers are responsible for cascading alert
	// deletion first; implementations may additionally enforce it.
	Delete(ctx context.Context, id string) error
}
