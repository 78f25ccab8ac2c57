// Package scheduling runs monitoring checks: it resolves the detector for an
// item, drives the checking/active/error lifecycle, persists detected alerts
// and publishes lifecycle events.
package scheduling

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/MarkSentinel/internal/application/detection"
	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

const (
	defaultCheckTimeout = 2 * time.Minute
	defaultBatchSize    = 50
)

// Scheduler coordinates check runs over monitoring items.
type Scheduler struct {
	items     monitoring.ItemRepository
	alerts    alert.AlertRepository
	detectors *detection.Registry
	publisher kafka.Publisher
	metrics   *metrics.Metrics
	logger    logging.Logger

	checkTimeout time.Duration
	batchSize    int
	concurrency  int
	now          func() time.Time
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithCheckTimeout bounds the duration of a single check run.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.checkTimeout = d
		}
	}
}

// WithBatchSize bounds how many due items a single RunDue pass loads.
func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithConcurrency lets RunDue check up to n items in parallel.  Defaults to
// sequential.
func WithConcurrency(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPublisher sets the event publisher.  Defaults to a no-op.
func WithPublisher(p kafka.Publisher) Option {
	return func(s *Scheduler) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scheduler) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithNow injects the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler wires the scheduler with its repositories and detectors.
func NewScheduler(
	items monitoring.ItemRepository,
	alerts alert.AlertRepository,
	detectors *detection.Registry,
	logger logging.Logger,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		items:        items,
		alerts:       alerts,
		detectors:    detectors,
		publisher:    kafka.NewNopPublisher(),
		logger:       logger,
		checkTimeout: defaultCheckTimeout,
		batchSize:    defaultBatchSize,
		concurrency:  1,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunCheck executes one monitoring check for the item.  The item is moved to
// checking before any detection work, and always resolves to active or error
// before RunCheck returns.
func (s *Scheduler) RunCheck(ctx context.Context, itemID string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.Status == monitoring.StatusChecking {
		return errors.New(errors.ErrCodeCheckInProgress, "item %s already has a check in flight", itemID)
	}

	// The checking transition is persisted before detection starts, so a
	// concurrent RunCheck observes it and refuses.
	if err := s.items.UpdateStatus(ctx, item.ID, monitoring.StatusChecking, nil); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to mark item %s as checking", item.ID)
	}

	started := s.now()
	detector, err := s.detectors.ForItem(item)
	if err != nil {
		return s.failCheck(ctx, item, started, err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	result, err := detector.Detect(checkCtx, item)
	if err != nil {
		return s.failCheck(ctx, item, started, err)
	}

	if len(result.Alerts) > 0 {
		if err := s.alerts.CreateBatch(ctx, result.Alerts); err != nil {
			return s.failCheck(ctx, item, started, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to store alerts"))
		}
	}

	checkedAt := result.CheckedAt
	nextCheck := result.NextCheck
	item.LastChecked = &checkedAt
	item.NextCheck = &nextCheck
	item.Status = monitoring.StatusActive
	item.AlertCount += len(result.Alerts)
	item.LastError = ""
	item.UpdatedAt = s.now()
	if err := s.items.Update(ctx, item); err != nil {
		return s.failCheck(ctx, item, started, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist check outcome"))
	}

	s.publishCompleted(ctx, item, result)
	if s.metrics != nil {
		s.metrics.ObserveCheck(item.Type.String(), "success", s.now().Sub(started))
		for _, a := range result.Alerts {
			s.metrics.ObserveAlert(string(a.Type), string(a.Severity))
		}
	}
	s.logger.Info("check completed",
		logging.String("item_id", item.ID),
		logging.String("item_type", item.Type.String()),
		logging.Int("scanned", result.Scanned),
		logging.Int("new_alerts", len(result.Alerts)))
	return nil
}

// failCheck resolves the checking state to error and reports the cause.
func (s *Scheduler) failCheck(ctx context.Context, item *monitoring.MonitoringItem, started time.Time, cause error) error {
	msg := cause.Error()

	// ctx may already be expired when the failure was a timeout; the status
	// write must still land.
	writeCtx := context.WithoutCancel(ctx)
	if err := s.items.UpdateStatus(writeCtx, item.ID, monitoring.StatusError, &msg); err != nil {
		s.logger.Error("failed to record check failure",
			logging.String("item_id", item.ID),
			logging.Err(err))
	}

	payload := kafka.CheckFailedPayload{
		MonitoringItemID: item.ID,
		ItemType:         item.Type.String(),
		Reason:           msg,
		FailedAt:         s.now(),
	}
	s.publish(writeCtx, kafka.TopicCheckFailed, item.ID, payload)

	if s.metrics != nil {
		s.metrics.ObserveCheck(item.Type.String(), "error", s.now().Sub(started))
	}
	s.logger.Warn("check failed",
		logging.String("item_id", item.ID),
		logging.String("item_type", item.Type.String()),
		logging.Err(cause))
	return cause
}

func (s *Scheduler) publishCompleted(ctx context.Context, item *monitoring.MonitoringItem, result *detection.Result) {
	s.publish(ctx, kafka.TopicCheckCompleted, item.ID, kafka.CheckCompletedPayload{
		MonitoringItemID: item.ID,
		ItemType:         item.Type.String(),
		Scanned:          result.Scanned,
		NewAlerts:        len(result.Alerts),
		CheckedAt:        result.CheckedAt,
		NextCheck:        result.NextCheck,
	})
	for _, a := range result.Alerts {
		s.publish(ctx, kafka.TopicConflictDetected, item.ID, kafka.ConflictDetectedPayload{
			AlertID:          a.ID,
			MonitoringItemID: a.MonitoringItemID,
			AlertType:        string(a.Type),
			DetectionKey:     a.DetectionKey,
			Keyword:          a.Keyword,
			Severity:         string(a.Severity),
			DetectedAt:       a.DetectedAt,
		})
	}
}

// publish wraps and sends one event.  Publish failures are logged, never
// propagated; event delivery is best effort.
func (s *Scheduler) publish(ctx context.Context, topic, key string, payload interface{}) {
	env, err := kafka.NewEnvelope(topic, payload)
	if err != nil {
		s.logger.Error("failed to build event envelope", logging.String("topic", topic), logging.Err(err))
		return
	}
	if err := s.publisher.Publish(ctx, topic, key, env); err != nil {
		s.logger.Error("failed to publish event", logging.String("topic", topic), logging.Err(err))
	}
}

// RunDue loads due items and runs each with per-item error isolation.  It
// returns how many checks were attempted.
func (s *Scheduler) RunDue(ctx context.Context) (int, error) {
	due, err := s.items.ListDue(ctx, s.now(), s.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load due items")
	}

	attempted := 0
	if s.concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for _, item := range due {
			if ctx.Err() != nil {
				break
			}
			attempted++
			id := item.ID
			g.Go(func() error {
				if err := s.RunCheck(gctx, id); err != nil {
					s.logger.Warn("due check failed",
						logging.String("item_id", id),
						logging.Err(err))
				}
				return nil
			})
		}
		_ = g.Wait()
		if ctx.Err() != nil {
			return attempted, ctx.Err()
		}
	} else {
		for _, item := range due {
			if ctx.Err() != nil {
				return attempted, ctx.Err()
			}
			attempted++
			if err := s.RunCheck(ctx, item.ID); err != nil {
				s.logger.Warn("due check failed",
					logging.String("item_id", item.ID),
					logging.Err(err))
			}
		}
	}
	if attempted > 0 {
		s.logger.Info("due pass finished", logging.Int("attempted", attempted))
	}
	return attempted, nil
}

// DeleteItem removes a monitoring item and all of its alerts.  Alerts are
// deleted first so no orphaned alert survives a partial failure.
func (s *Scheduler) DeleteItem(ctx context.Context, itemID string) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	deleted, err := s.alerts.DeleteByItem(ctx, item.ID)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete alerts for item %s", item.ID)
	}
	if err := s.items.Delete(ctx, item.ID); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete item %s", item.ID)
	}

	s.publish(ctx, kafka.TopicItemDeleted, item.ID, kafka.ItemDeletedPayload{
		MonitoringItemID: item.ID,
		AlertsDeleted:    deleted,
		DeletedAt:        s.now(),
	})
	s.logger.Info("item deleted",
		logging.String("item_id", item.ID),
		logging.Int64("alerts_deleted", deleted))
	return nil
}
