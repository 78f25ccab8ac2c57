package detection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/MarkSentinel/internal/domain/alert"
	"github.com/turtacn/MarkSentinel/internal/domain/monitoring"
	"github.com/turtacn/MarkSentinel/internal/domain/similarity"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/scansource"
	"github.com/turtacn/MarkSentinel/pkg/types/common"
)

// Typo-squat band: similar enough to confuse, different enough to not be the
// brand itself.
const (
	typoSquatLower = 0.7
	typoSquatUpper = 0.95
)

// domainDetector flags registered domains that contain a keyword or sit in
// the typo-squat similarity band around it.
type domainDetector struct {
	source     scansource.Source
	extensions []string
	logger     logging.Logger
	now        func() time.Time
}

// NewDomainDetector builds the domain surface detector.  defaultExtensions
// is used when an item does not carry its own TLD list.
func NewDomainDetector(source scansource.Source, defaultExtensions []string, log logging.Logger) Detector {
	return &domainDetector{
		source:     source,
		extensions: defaultExtensions,
		logger:     log.Named("detector.domain"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (d *domainDetector) Type() monitoring.ItemType { return monitoring.ItemTypeDomain }

func (d *domainDetector) Detect(ctx context.Context, item *monitoring.MonitoringItem) (*Result, error) {
	if err := validateItem(item, monitoring.ItemTypeDomain); err != nil {
		return nil, err
	}

	extensions := item.Extensions
	if len(extensions) == 0 {
		extensions = d.extensions
	}

	now := d.now()
	result := newResult(item, now)

	for _, keyword := range item.Keywords {
		for _, ext := range extensions {
			candidates, err := d.source.Scan(ctx, keyword, ext)
			if err != nil {
				return nil, err
			}
			result.Scanned += len(candidates)

			for _, c := range candidates {
				if a := d.evaluate(item, keyword, c); a != nil {
					result.Alerts = append(result.Alerts, a)
				}
			}
		}
	}

	d.logger.Info("domain check completed",
		logging.String("item_id", item.ID),
		logging.Int("scanned", result.Scanned),
		logging.Int("alerts", len(result.Alerts)))
	return result, nil
}

// evaluate returns an alert when the candidate domain is suspicious, nil
// otherwise.
func (d *domainDetector) evaluate(item *monitoring.MonitoringItem, keyword string, c scansource.RawItem) *alert.ConflictAlert {
	domain := strings.ToLower(c.Key)
	name := stripTLD(domain)

	substring := strings.Contains(domain, strings.ToLower(keyword))

	var severity alert.Severity
	var reason string
	switch {
	case substring:
		severity = alert.SeverityHigh
		reason = fmt.Sprintf("domain contains the brand keyword %q", keyword)
	default:
		score := similarity.Score(keyword, name)
		if score <= typoSquatLower || score >= typoSquatUpper {
			return nil
		}
		severity = alert.SeverityMedium
		reason = fmt.Sprintf("domain name scores %.2f against %q (possible typo-squat)", score, keyword)
	}

	a := alert.NewConflictAlert(item.ID, alert.TypeDomainRegistration, c.Key, keyword)
	a.Platform = c.Platform
	a.Title = fmt.Sprintf("Suspicious domain: %s", c.Key)
	a.Description = reason
	a.Severity = severity
	a.ActionRequired = "Investigate registrant and consider a UDRP complaint"
	a.DetectedAt = d.now()
	a.Data = common.Metadata{"domain": c.Key}
	for k, v := range c.Data {
		a.Data[k] = v
	}
	return a
}

// stripTLD removes everything from the first dot onward.
func stripTLD(domain string) string {
	if i := strings.Index(domain, "."); i >= 0 {
		return domain[:i]
	}
	return domain
}
