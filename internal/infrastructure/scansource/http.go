package scansource

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
)

// scanEnvelope is the wire format shared by the HTTP scan collaborators.
type scanEnvelope struct {
	Items []scanItemPayload `json:"items"`
}

type scanItemPayload struct {
	Key         string                 `json:"key"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	URL         string                 `json:"url"`
	Content     string                 `json:"content"`
	Data        map[string]interface{} `json:"data"`
}

// httpSource queries a single HTTP scan collaborator.  One instance per
// surface; the kind string names the surface in logs and drives
// post-processing (sentiment for social).
type httpSource struct {
	kind   string
	rest   *resty.Client
	logger logging.Logger
}

// NewDomainSource builds the domain-candidate scan source.
func NewDomainSource(baseURL string, timeout time.Duration, log logging.Logger) Source {
	return newHTTPSource("domain", baseURL, timeout, log)
}

// NewMarketplaceSource builds the marketplace-listing scan source.
func NewMarketplaceSource(baseURL string, timeout time.Duration, log logging.Logger) Source {
	return newHTTPSource("marketplace", baseURL, timeout, log)
}

// NewSocialSource builds the social-post scan source.
func NewSocialSource(baseURL string, timeout time.Duration, log logging.Logger) Source {
	return newHTTPSource("social", baseURL, timeout, log)
}

func newHTTPSource(kind, baseURL string, timeout time.Duration, log logging.Logger) Source {
	return &httpSource{
		kind: kind,
		rest: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		logger: log.Named("scansource." + kind),
	}
}

func (s *httpSource) Name() string { return s.kind }

func (s *httpSource) Scan(ctx context.Context, keyword, scope string) ([]RawItem, error) {
	var envelope scanEnvelope
	resp, err := s.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     keyword,
			"scope": scope,
		}).
		SetResult(&envelope).
		ForceContentType("application/json").
		Get("/scan")

	if err != nil || resp.IsError() {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		s.logger.Warn("scan failed, returning empty result",
			logging.String("keyword", keyword),
			logging.String("scope", scope),
			logging.Int("status", status),
			logging.Err(err))
		return nil, nil
	}

	items := make([]RawItem, 0, len(envelope.Items))
	for _, p := range envelope.Items {
		if p.Key == "" {
			continue
		}
		item := RawItem{
			Key:         p.Key,
			Title:       p.Title,
			Description: p.Description,
			URL:         p.URL,
			Platform:    scope,
			Data:        p.Data,
		}
		if p.Content != "" && item.Description == "" {
			item.Description = p.Content
		}
		if s.kind == "social" {
			item.Sentiment = ClassifySentiment(p.Content + " " + p.Title)
		}
		items = append(items, item)
	}
	return items, nil
}

var negativeMarkers = []string{
	"scam", "fake", "fraud", "counterfeit", "ripoff", "avoid", "terrible",
	"worst", "broken", "stolen", "knockoff",
}

var positiveMarkers = []string{
	"love", "great", "excellent", "recommend", "awesome", "best",
}

// ClassifySentiment assigns a coarse tone to post text using marker words.
// Negative markers dominate: one negative beats any number of positives.
func ClassifySentiment(text string) Sentiment {
	lower := strings.ToLower(text)
	for _, m := range negativeMarkers {
		if strings.Contains(lower, m) {
			return SentimentNegative
		}
	}
	for _, m := range positiveMarkers {
		if strings.Contains(lower, m) {
			return SentimentPositive
		}
	}
	return SentimentNeutral
}
