package detection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/scansource"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// marketplaceDetector flags listings whose title or description mentions a
// keyword.  Listing severity is always medium: a mention warrants review, but
// the listing alone does not prove infringement.
type marketplaceDetector struct {
	source    scansource.Source
	platforms []string
	logger    logging.Logger
	now       func() time.Time
}

// NewMarketplaceDetector builds the marketplace surface detector.
func NewMarketplaceDetector(source scansource.Source, defaultPlatforms []string, log logging.Logger) Detector {
	return &marketplaceDetector{
		source:    source,
		platforms: defaultPlatforms,
		logger:    log.Named("detector.marketplace"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (d *marketplaceDetector) Type() monitoring.ItemType { return monitoring.ItemTypeMarketplace }

func (d *marketplaceDetector) Detect(ctx context.Context, item *monitoring.MonitoringItem) (*Result, error) {
	if err := validateItem(item, monitoring.ItemTypeMarketplace); err != nil {
		return nil, err
	}

	platforms := item.Platforms
	if len(platforms) == 0 {
		platforms = d.platforms
	}

	now := d.now()
	result := newResult(item, now)

	for _, keyword := range item.Keywords {
		lowerKw := strings.ToLower(keyword)
		for _, platform := range platforms {
			listings, err := d.source.Scan(ctx, keyword, platform)
			if err != nil {
				return nil, err
			}
			result.Scanned += len(listings)

			for _, l := range listings {
				if !strings.Contains(strings.ToLower(l.Title), lowerKw) &&
					!strings.Contains(strings.ToLower(l.Description), lowerKw) {
					continue
				}

				a := alert.NewConflictAlert(item.ID, alert.TypeSuspiciousListing, l.Key, keyword)
				a.Platform = platform
				a.Title = fmt.Sprintf("Suspicious listing on %s: %s", platform, l.Title)
				a.Description = l.Description
				a.Severity = alert.SeverityMedium
				a.ActionRequired = "Review listing and file a takedown request if unauthorized"
				a.DetectedAt = d.now()
				a.Data = common.Metadata{"listing_id": l.Key, "url": l.URL}
				for k, v := range l.Data {
					a.Data[k] = v
				}
				result.Alerts = append(result.Alerts, a)
			}
		}
	}

	d.logger.Info("marketplace check completed",
		logging.String("item_id", item.ID),
		logging.Int("scanned", result.Scanned),
		logging.Int("alerts", len(result.Alerts)))
	return result, nil
}
