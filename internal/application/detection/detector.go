// Package detection implements the per-surface conflict detectors.  Each
// detector consumes a monitoring item's keywords and one data source
// (registry client or scan source) and emits conflict alerts with severity
// and a suggested action.  Detectors never mutate persisted state; the
// scheduler merges their results.
package detection

import (
	"context"
	"time"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// Result is the outcome of a single detector run.
type Result struct {
	Alerts    []*alert.ConflictAlert
	Scanned   int
	CheckedAt time.Time

	// NextCheck is computed from the item's frequency policy at CheckedAt.
	NextCheck time.Time
}

// Detector is the shared contract of all surface detectors.
type Detector interface {
	Type() monitoring.ItemType
	Detect(ctx context.Context, item *monitoring.MonitoringItem) (*Result, error)
}

// Registry dispatches a monitoring item to the detector for its type.
type Registry struct {
	detectors map[monitoring.ItemType]Detector
}

// NewRegistry indexes the given detectors by type.
func NewRegistry(detectors ...Detector) *Registry {
	m := make(map[monitoring.ItemType]Detector, len(detectors))
	for _, d := range detectors {
		m[d.Type()] = d
	}
	return &Registry{detectors: m}
}

// ForItem returns the detector matching the item's type.
func (r *Registry) ForItem(item *monitoring.MonitoringItem) (Detector, error) {
	d, ok := r.detectors[item.Type]
	if !ok {
		return nil, errors.NewUnsupported("no detector registered for item type %q", item.Type)
	}
	return d, nil
}

// validateItem enforces the structural preconditions shared by all detectors.
func validateItem(item *monitoring.MonitoringItem, want monitoring.ItemType) error {
	if item.Type != want {
		return errors.NewUnsupported("detector for %q received item of type %q", want, item.Type)
	}
	if len(item.Keywords) == 0 {
		return errors.New(errors.ErrCodeEmptyKeywords, "monitoring item has no keywords")
	}
	return nil
}

// newResult stamps a result with the check time and the item's next check.
func newResult(item *monitoring.MonitoringItem, now time.Time) *Result {
	return &Result{
		CheckedAt: now,
		NextCheck: item.Frequency.Next(now),
	}
}

// Severity thresholds shared by the trademark detector.
const (
	highSimilarity   = 0.9
	mediumSimilarity = 0.7
)

// severityForScore maps a similarity score to an alert severity.
func severityForScore(score float64) alert.Severity {
	switch {
	case score > highSimilarity:
		return alert.SeverityHigh
	case score > mediumSimilarity:
		return alert.SeverityMedium
	default:
		return alert.SeverityLow
	}
}

// actionForScore selects the suggested next step by the same thresholds.
func actionForScore(score float64) string {
	switch {
	case score > highSimilarity:
		return "File opposition before the registration window closes"
	case score > mediumSimilarity:
		return "Review conflict with trademark counsel"
	default:
		return "Monitor for status changes"
	}
}
