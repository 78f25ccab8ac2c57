// Package items exposes monitoring item management to the interface layers.
package items

import (
	"context"

	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// CreateInput carries the fields for a new monitoring item.
type CreateInput struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Keywords        []string `json:"keywords"`
	Frequency       string   `json:"frequency"`
	Extensions      []string `json:"extensions,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	SocialPlatforms []string `json:"social_platforms,omitempty"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Name            *string  `json:"name,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Frequency       *string  `json:"frequency,omitempty"`
	Extensions      []string `json:"extensions,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	SocialPlatforms []string `json:"social_platforms,omitempty"`
}

// ListInput carries list filters and pagination.
type ListInput struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

// Service manages monitoring items.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*monitoring.MonitoringItem, error)
	Get(ctx context.Context, id string) (*monitoring.MonitoringItem, error)
	List(ctx context.Context, input ListInput) ([]*monitoring.MonitoringItem, int64, error)
	Update(ctx context.Context, id string, input UpdateInput) (*monitoring.MonitoringItem, error)
}

type service struct {
	repo   monitoring.ItemRepository
	logger logging.Logger
}

// NewService builds the item management service.
func NewService(repo monitoring.ItemRepository, logger logging.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*monitoring.MonitoringItem, error) {
	item, err := monitoring.NewMonitoringItem(
		input.Name,
		monitoring.ItemType(input.Type),
		input.Keywords,
		monitoring.Frequency(input.Frequency),
	)
	if err != nil {
		return nil, err
	}
	item.Extensions = input.Extensions
	item.Platforms = input.Platforms
	item.SocialPlatforms = input.SocialPlatforms

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("monitoring item created",
		logging.String("item_id", item.ID),
		logging.String("type", item.Type.String()),
		logging.Int("keywords", len(item.Keywords)))
	return item, nil
}

func (s *service) Get(ctx context.Context, id string) (*monitoring.MonitoringItem, error) {
	if id == "" {
		return nil, errors.NewValidation("item id is required")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, input ListInput) ([]*monitoring.MonitoringItem, int64, error) {
	var opts []monitoring.ListOption
	if input.Type != "" {
		t := monitoring.ItemType(input.Type)
		if !t.Valid() {
			return nil, 0, errors.NewValidation("unknown item type %q", input.Type)
		}
		opts = append(opts, monitoring.WithType(t))
	}
	if input.Status != "" {
		opts = append(opts, monitoring.WithStatus(monitoring.ItemStatus(input.Status)))
	}
	opts = append(opts, monitoring.WithPage(input.Limit, input.Offset))
	return s.repo.List(ctx, opts...)
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*monitoring.MonitoringItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status == monitoring.StatusChecking {
		return nil, errors.New(errors.ErrCodeCheckInProgress, "item %s has a check in flight", id)
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Keywords != nil {
		item.Keywords = input.Keywords
	}
	if input.Frequency != nil {
		item.Frequency = monitoring.Frequency(*input.Frequency)
		// A changed cadence takes effect from the next completed check;
		// the pending NextCheck is left as scheduled.
	}
	if input.Extensions != nil {
		item.Extensions = input.Extensions
	}
	if input.Platforms != nil {
		item.Platforms = input.Platforms
	}
	if input.SocialPlatforms != nil {
		item.SocialPlatforms = input.SocialPlatforms
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
