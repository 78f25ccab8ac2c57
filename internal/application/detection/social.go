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

// socialDetector flags posts mentioning a keyword.  Negative-sentiment
// mentions are escalated to high severity, everything else is low.
type socialDetector struct {
	source    scansource.Source
	platforms []string
	logger    logging.Logger
	now       func() time.Time
}

// NewSocialDetector builds the social-media surface detector.
func NewSocialDetector(source scansource.Source, defaultPlatforms []string, log logging.Logger) Detector {
	return &socialDetector{
		source:    source,
		platforms: defaultPlatforms,
		logger:    log.Named("detector.social"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (d *socialDetector) Type() monitoring.ItemType { return monitoring.ItemTypeSocial }

func (d *socialDetector) Detect(ctx context.Context, item *monitoring.MonitoringItem) (*Result, error) {
	if err := validateItem(item, monitoring.ItemTypeSocial); err != nil {
		return nil, err
	}

	platforms := item.SocialPlatforms
	if len(platforms) == 0 {
		platforms = d.platforms
	}

	now := d.now()
	result := newResult(item, now)

	for _, keyword := range item.Keywords {
		lowerKw := strings.ToLower(keyword)
		for _, platform := range platforms {
			posts, err := d.source.Scan(ctx, keyword, platform)
			if err != nil {
				return nil, err
			}
			result.Scanned += len(posts)

			for _, p := range posts {
				content := p.Description
				if !strings.Contains(strings.ToLower(content), lowerKw) {
					continue
				}

				severity := alert.SeverityLow
				action := "Track conversation for follow-up"
				if p.Sentiment == scansource.SentimentNegative {
					severity = alert.SeverityHigh
					action = "Escalate to brand-reputation team"
				}

				a := alert.NewConflictAlert(item.ID, alert.TypeBrandMention, p.Key, keyword)
				a.Platform = platform
				a.Title = fmt.Sprintf("Brand mention on %s", platform)
				a.Description = content
				a.Severity = severity
				a.ActionRequired = action
				a.DetectedAt = d.now()
				a.Data = common.Metadata{
					"post_id":   p.Key,
					"url":       p.URL,
					"sentiment": string(p.Sentiment),
				}
				result.Alerts = append(result.Alerts, a)
			}
		}
	}

	d.logger.Info("social check completed",
		logging.String("item_id", item.ID),
		logging.Int("scanned", result.Scanned),
		logging.Int("alerts", len(result.Alerts)))
	return result, nil
}
