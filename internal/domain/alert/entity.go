// Package alert defines the ConflictAlert entity: one detected potential
// conflict, owned by exactly one monitoring item and immutable once created
// except for dismissal.
package alert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MarkSentinel/pkg/errors"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// AlertType is the detector-specific subtype of a conflict alert.
type AlertType string

const (
	TypeNewApplication     AlertType = "new_application"
	TypeSimilarMark        AlertType = "similar_mark"
	TypeDomainRegistration AlertType = "domain_registration"
	TypeSuspiciousListing  AlertType = "suspicious_listing"
	TypeBrandMention       AlertType = "brand_mention"
)

func (t AlertType) String() string { return string(t) }

// Severity is the urgency tier assigned by a detector.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) String() string { return string(s) }

// Rank returns an ordering value for severity comparison, higher is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// ConflictAlert is one detected potential conflict.  Every detection gets a
// fresh UUID even when the same underlying conflict is found again in a later
// run; DetectionKey identifies the underlying conflict stably across runs.
type ConflictAlert struct {
	ID               string    `json:"id"`
	MonitoringItemID string    `json:"monitoring_item_id"`
	Type             AlertType `json:"type"`

	// DetectionKey is "{type}:{sourceKey}:{keyword}", stable for the same
	// underlying conflict.  Stored for future de-duplication decisions; no
	// de-duplication is performed on insert.
	DetectionKey string `json:"detection_key"`

	Keyword     string          `json:"keyword"`
	Platform    string          `json:"platform,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Data        common.Metadata `json:"data,omitempty"`

	Severity       Severity  `json:"severity"`
	DetectedAt     time.Time `json:"detected_at"`
	ActionRequired string    `json:"action_required"`
}

// NewConflictAlert constructs an alert with a generated UUID and computed
// detection key.
func NewConflictAlert(itemID string, alertType AlertType, sourceKey, keyword string) *ConflictAlert {
	return &ConflictAlert{
		ID:               uuid.New().String(),
		MonitoringItemID: itemID,
		Type:             alertType,
		DetectionKey:     BuildDetectionKey(alertType, sourceKey, keyword),
		Keyword:          keyword,
		DetectedAt:       time.Now().UTC(),
	}
}

// BuildDetectionKey composes the stable identity of an underlying conflict.
func BuildDetectionKey(alertType AlertType, sourceKey, keyword string) string {
	return fmt.Sprintf("%s:%s:%s", alertType, sourceKey, keyword)
}

// Validate checks the structural invariants of the alert.
func (a *ConflictAlert) Validate() error {
	if a.ID == "" {
		return errors.NewValidation("alert id must not be empty")
	}
	if a.MonitoringItemID == "" {
		return errors.NewValidation("alert must reference a monitoring item")
	}
	switch a.Type {
	case TypeNewApplication, TypeSimilarMark, TypeDomainRegistration, TypeSuspiciousListing, TypeBrandMention:
	default:
		return errors.NewValidation("unknown alert type %q", a.Type)
	}
	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
	default:
		return errors.NewValidation("unknown severity %q", a.Severity)
	}
	return nil
}
