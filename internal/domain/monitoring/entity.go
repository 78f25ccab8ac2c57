// Package monitoring defines the MonitoringItem aggregate: a tracked brand
// keyword set under watch, its lifecycle states, and its check frequency
// policy.
package monitoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// ItemType identifies the surface a monitoring item watches.
type ItemType string

const (
	ItemTypeTrademark   ItemType = "trademark"
	ItemTypeDomain      ItemType = "domain"
	ItemTypeMarketplace ItemType = "marketplace"
	ItemTypeSocial      ItemType = "social"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeTrademark, ItemTypeDomain, ItemTypeMarketplace, ItemTypeSocial:
		return true
	}
	return false
}

func (t ItemType) String() string { return string(t) }

// Frequency is the check cadence policy of a monitoring item.
type Frequency string

const (
	FrequencyHourly  Frequency = "hourly"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Interval returns the fixed duration between checks for the frequency.
// Monthly is a fixed 30 days, not calendar-month aware.  Unknown frequencies
// behave as daily.
func (f Frequency) Interval() time.Duration {
	switch f {
	case FrequencyHourly:
		return time.Hour
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Next returns the next check time computed from the given instant.
func (f Frequency) Next(from time.Time) time.Time {
	return from.Add(f.Interval())
}

func (f Frequency) String() string { return string(f) }

// ItemStatus is the lifecycle state of a monitoring item.
type ItemStatus string

const (
	// StatusActive means the item is healthy and scheduled for future checks.
	StatusActive ItemStatus = "active"

	// StatusChecking is the transient in-flight state.  Every run must resolve
	// it to active or error before completing.
	StatusChecking ItemStatus = "checking"

	// StatusError means the last check failed structurally; LastError carries
	// the reason.
	StatusError ItemStatus = "error"
)

func (s ItemStatus) String() string { return string(s) }

// MonitoringItem is a tracked brand/keyword set under watch.  Status,
// timestamps and counts are mutated only by the scheduler; keywords and
// frequency only by user edits.
type MonitoringItem struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      ItemType   `json:"type"`
	Keywords  []string   `json:"keywords"`
	Frequency Frequency  `json:"frequency"`
	Status    ItemStatus `json:"status"`

	LastChecked *time.Time `json:"last_checked,omitempty"`
	NextCheck   *time.Time `json:"next_check,omitempty"`
	AlertCount  int        `json:"alert_count"`
	LastError   string     `json:"last_error,omitempty"`

	// Type-specific scan scopes.
	Extensions      []string `json:"extensions,omitempty"`       // domain TLDs
	Platforms       []string `json:"platforms,omitempty"`        // marketplace names
	SocialPlatforms []string `json:"social_platforms,omitempty"` // social networks

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMonitoringItem constructs an active item with a generated ID.
func NewMonitoringItem(name string, itemType ItemType, keywords []string, frequency Frequency) (*MonitoringItem, error) {
	now := time.Now().UTC()
	item := &MonitoringItem{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      itemType,
		Keywords:  keywords,
		Frequency: frequency,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

// Validate checks the structural invariants of the item.
func (m *MonitoringItem) Validate() error {
	if m.Name == "" {
		return errors.NewValidation("monitoring item name must not be empty")
	}
	if !m.Type.Valid() {
		return errors.NewUnsupported("unknown monitoring item type %q", m.Type)
	}
	if len(m.Keywords) == 0 {
		return errors.New(errors.ErrCodeEmptyKeywords, "monitoring item must have at least one keyword")
	}
	for i, kw := range m.Keywords {
		if kw == "" {
			return errors.NewValidation("keyword at position %d is empty", i)
		}
	}
	// Unknown frequencies are tolerated; Interval() schedules them as daily.
	return nil
}

// IsDue reports whether the item should be checked at the given instant.
// Items with no NextCheck yet (never checked) are always due.
func (m *MonitoringItem) IsDue(now time.Time) bool {
	if m.Status == StatusChecking {
		return false
	}
	if m.NextCheck == nil {
		return true
	}
	return !now.Before(*m.NextCheck)
}
