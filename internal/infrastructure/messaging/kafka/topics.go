// Package kafka publishes monitoring lifecycle events: completed and failed
// checks, detected conflicts, and item deletions.  Downstream consumers
// (notification fanout, analytics) subscribe to these topics.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MarkSentinel/pkg/errors"
)

const (
	TopicConflictDetected = "conflict.detected"
	TopicCheckCompleted   = "check.completed"
	TopicCheckFailed      = "check.failed"
	TopicItemDeleted      = "item.deleted"
)

// EventEnvelope standardizes every published message.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload in an EventEnvelope for the given event type.
func NewEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        "marksentinel",
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       raw,
	}, nil
}

// ConflictDetectedPayload is emitted once per stored alert.
type ConflictDetectedPayload struct {
	AlertID          string    `json:"alert_id"`
	MonitoringItemID string    `json:"monitoring_item_id"`
	AlertType        string    `json:"alert_type"`
	DetectionKey     string    `json:"detection_key"`
	Keyword          string    `json:"keyword"`
	Severity         string    `json:"severity"`
	DetectedAt       time.Time `json:"detected_at"`
}

// CheckCompletedPayload is emitted after a successful run.
type CheckCompletedPayload struct {
	MonitoringItemID string    `json:"monitoring_item_id"`
	ItemType         string    `json:"item_type"`
	Scanned          int       `json:"scanned"`
	NewAlerts        int       `json:"new_alerts"`
	CheckedAt        time.Time `json:"checked_at"`
	NextCheck        time.Time `json:"next_check"`
}

// CheckFailedPayload is emitted after a failed run.
type CheckFailedPayload struct {
	MonitoringItemID string    `json:"monitoring_item_id"`
	ItemType         string    `json:"item_type"`
	Reason           string    `json:"reason"`
	FailedAt         time.Time `json:"failed_at"`
}

// ItemDeletedPayload is emitted after an item and its alerts are removed.
type ItemDeletedPayload struct {
	MonitoringItemID string    `json:"monitoring_item_id"`
	AlertsDeleted    int64     `json:"alerts_deleted"`
	DeletedAt        time.Time `json:"deleted_at"`
}
