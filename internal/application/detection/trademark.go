package detection

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/domain/similarity"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/registry"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// trademarkDetector watches the trademark registry for new applications and
// similar marks around each keyword.
type trademarkDetector struct {
	client registry.Client
	logger logging.Logger
	now    func() time.Time
}

// NewTrademarkDetector builds the trademark surface detector.
func NewTrademarkDetector(client registry.Client, log logging.Logger) Detector {
	return &trademarkDetector{
		client: client,
		logger: log.Named("detector.trademark"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (d *trademarkDetector) Type() monitoring.ItemType { return monitoring.ItemTypeTrademark }

func (d *trademarkDetector) Detect(ctx context.Context, item *monitoring.MonitoringItem) (*Result, error) {
	if err := validateItem(item, monitoring.ItemTypeTrademark); err != nil {
		return nil, err
	}

	now := d.now()
	result := newResult(item, now)

	since := time.Time{}
	if item.LastChecked != nil {
		since = *item.LastChecked
	}

	for _, keyword := range item.Keywords {
		newApps, err := d.client.MonitorNewApplications(ctx, []string{keyword}, since)
		if err != nil {
			return nil, err
		}
		result.Scanned += len(newApps)
		for _, rec := range newApps {
			result.Alerts = append(result.Alerts, d.newApplicationAlert(item, keyword, rec))
		}

		similar, err := d.client.FindSimilarMarks(ctx, keyword, registry.SearchOptions{})
		if err != nil {
			return nil, err
		}
		result.Scanned += len(similar)
		for _, rec := range similar {
			result.Alerts = append(result.Alerts, d.similarMarkAlert(item, keyword, rec))
		}
	}

	d.logger.Info("trademark check completed",
		logging.String("item_id", item.ID),
		logging.Int("scanned", result.Scanned),
		logging.Int("alerts", len(result.Alerts)))
	return result, nil
}

func (d *trademarkDetector) newApplicationAlert(item *monitoring.MonitoringItem, keyword string, rec registry.TrademarkRecord) *alert.ConflictAlert {
	score := similarity.Score(keyword, rec.MarkDescription)

	a := alert.NewConflictAlert(item.ID, alert.TypeNewApplication, rec.SerialNumber, keyword)
	a.Title = fmt.Sprintf("New application: %s", rec.MarkDescription)
	a.Description = fmt.Sprintf("%s filed %q on %s (serial %s)",
		rec.ApplicantName, rec.MarkDescription,
		rec.ApplicationDate.Format("2006-01-02"), rec.SerialNumber)
	a.Severity = severityForScore(score)
	a.ActionRequired = actionForScore(score)
	a.DetectedAt = d.now()
	a.Data = common.Metadata{
		"serial_number":    rec.SerialNumber,
		"mark_description": rec.MarkDescription,
		"applicant_name":   rec.ApplicantName,
		"application_date": rec.ApplicationDate.Format(time.RFC3339),
		"similarity":       score,
	}
	return a
}

func (d *trademarkDetector) similarMarkAlert(item *monitoring.MonitoringItem, keyword string, rec registry.TrademarkRecord) *alert.ConflictAlert {
	score := similarity.Score(keyword, rec.MarkDescription)

	severity := alert.SeverityMedium
	if score > highSimilarity {
		severity = alert.SeverityHigh
	}

	a := alert.NewConflictAlert(item.ID, alert.TypeSimilarMark, rec.SerialNumber, keyword)
	a.Title = fmt.Sprintf("Similar mark: %s", rec.MarkDescription)
	a.Description = fmt.Sprintf("Registered or pending mark %q (serial %s) scores %.2f against %q",
		rec.MarkDescription, rec.SerialNumber, score, keyword)
	a.Severity = severity
	a.ActionRequired = actionForScore(score)
	a.DetectedAt = d.now()
	a.Data = common.Metadata{
		"serial_number":    rec.SerialNumber,
		"mark_description": rec.MarkDescription,
		"status":           rec.Status,
		"similarity":       score,
	}
	return a
}
