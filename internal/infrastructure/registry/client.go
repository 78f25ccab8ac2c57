package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/turtacn/MarkSentinel/internal/config"
	"github.com/turtacn/MarkSentinel/internal/domain/similarity"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/database/redis"
	"github.com/turtacn/MarkSentinel/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarkSentinel/pkg/errors"
)

// ErrRecordUnavailable is returned by GetDetails when neither the upstream
// registry nor the fallback can supply the record.
var ErrRecordUnavailable = errors.New(errors.ErrCodeRecordNotFound, "trademark record unavailable")

// similarMarkThreshold is the minimum similarity score for a record to count
// as a similar mark.
const similarMarkThreshold = 0.7

// Client is the trademark registry contract consumed by the detectors.
// Search and monitoring methods absorb transport and parse failures: they
// log, fall back to the configured provider, and return a well-typed result,
// so a registry outage never crashes a check.
type Client interface {
	// Search queries the registry by keyword.
	Search(ctx context.Context, keyword string, opts SearchOptions) ([]TrademarkRecord, error)

	// GetDetails fetches a single record by serial number.
	GetDetails(ctx context.Context, serialNumber string) (*TrademarkRecord, error)

	// MonitorNewApplications returns applications filed after since for any
	// of the keywords, de-duplicated by serial number with first occurrence
	// winning and order preserved.
	MonitorNewApplications(ctx context.Context, keywords []string, since time.Time) ([]TrademarkRecord, error)

	// FindSimilarMarks searches every variation of targetMark and keeps
	// records whose description is not identical to the target but scores
	// above the similarity threshold, de-duplicated by serial number.
	FindSimilarMarks(ctx context.Context, targetMark string, opts SearchOptions) ([]TrademarkRecord, error)
}

// searchEnvelope is the registry search response wire format.
type searchEnvelope struct {
	Response struct {
		NumFound int             `json:"numFound"`
		Docs     []recordPayload `json:"docs"`
	} `json:"response"`
}

// recordPayload is one registry document on the wire.
type recordPayload struct {
	SerialNumber       string `json:"serial_number"`
	RegistrationNumber string `json:"registration_number"`
	MarkIdentification string `json:"mark_identification"`
	OwnerName          string `json:"owner_name"`
	FilingDate         string `json:"filing_date"`
	RegistrationDate   string `json:"registration_date"`
	Status             string `json:"status"`
	StatusDate         string `json:"status_date"`
	MarkType           string `json:"mark_type"`
	GoodsServices      string `json:"goods_services"`
}

const wireDateLayout = "2006-01-02"

// toRecord normalizes a wire document.  Unparseable dates are left zero
// rather than failing the whole response.
func (p recordPayload) toRecord() TrademarkRecord {
	rec := TrademarkRecord{
		SerialNumber:       p.SerialNumber,
		RegistrationNumber: p.RegistrationNumber,
		MarkDescription:    p.MarkIdentification,
		ApplicantName:      p.OwnerName,
		Status:             p.Status,
		MarkType:           p.MarkType,
		GoodsAndServices:   p.GoodsServices,
	}
	if t, err := time.Parse(wireDateLayout, p.FilingDate); err == nil {
		rec.ApplicationDate = t
	}
	if t, err := time.Parse(wireDateLayout, p.StatusDate); err == nil {
		rec.StatusDate = t
	}
	if p.RegistrationDate != "" {
		if t, err := time.Parse(wireDateLayout, p.RegistrationDate); err == nil {
			rec.RegistrationDate = &t
		}
	}
	return rec
}

type httpClient struct {
	rest     *resty.Client
	gate     *Gate
	cache    redis.Cache
	fallback FallbackProvider
	logger   logging.Logger
	cacheTTL time.Duration
}

// Option customizes a registry client.
type Option func(*httpClient)

// WithCache enables response memoization.  Cached hits skip the rate gate.
func WithCache(cache redis.Cache, ttl time.Duration) Option {
	return func(c *httpClient) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithFallback overrides the fallback provider.
func WithFallback(f FallbackProvider) Option {
	return func(c *httpClient) { c.fallback = f }
}

// WithClock overrides the rate-gate clock, used by tests.
func WithClock(clock Clock, interval time.Duration) Option {
	return func(c *httpClient) { c.gate = NewGate(interval, clock) }
}

// NewClient builds the production registry client from cfg.
func NewClient(cfg config.RegistryConfig, log logging.Logger, opts ...Option) Client {
	rest := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		rest.SetHeader("X-Api-Key", cfg.APIKey)
	}

	c := &httpClient{
		rest:     rest,
		gate:     NewGate(cfg.RequestInterval, nil),
		fallback: NewEmptyFallback(),
		logger:   log.Named("registry"),
		cacheTTL: cfg.CacheTTL,
	}
	if cfg.UseFallback {
		c.fallback = NewSyntheticFallback(time.Now().UTC())
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRateInterval adjusts the outbound request spacing at runtime, applied on
// configuration reload.
func (c *httpClient) SetRateInterval(interval time.Duration) {
	c.gate.SetInterval(interval)
}

func (c *httpClient) Search(ctx context.Context, keyword string, opts SearchOptions) ([]TrademarkRecord, error) {
	if keyword == "" {
		return nil, errors.NewValidation("search keyword must not be empty")
	}
	opts = opts.normalize()

	if c.cache != nil {
		key := fmt.Sprintf("registry:search:%s:%s:%d:%d", keyword, opts.Sort, opts.Offset, opts.Limit)
		var records []TrademarkRecord
		var degraded []TrademarkRecord
		usedFallback := false
		err := c.cache.GetOrSet(ctx, key, &records, c.cacheTTL, func(ctx context.Context) (interface{}, error) {
			recs, fromFallback := c.doSearch(ctx, keyword, opts)
			if fromFallback {
				// Fallback results serve this call only; caching them would
				// mask the upstream for the whole TTL.
				usedFallback = true
				degraded = recs
				return nil, errFallbackResult
			}
			return recs, nil
		})
		switch {
		case err == nil:
			return records, nil
		case usedFallback:
			return degraded, nil
		default:
			if err != errFallbackResult {
				// Cache trouble is not a search failure.
				c.logger.Warn("search cache bypassed", logging.String("keyword", keyword), logging.Err(err))
			}
			recs, _ := c.doSearch(ctx, keyword, opts)
			return recs, nil
		}
	}

	recs, _ := c.doSearch(ctx, keyword, opts)
	return recs, nil
}

// errFallbackResult aborts a cache fill when the loader had to degrade to the
// fallback provider.  It never escapes the client.
var errFallbackResult = errors.New(errors.ErrCodeExternalService, "registry unavailable, fallback served")

// doSearch performs the rate-gated network call.  All failures degrade to the
// fallback provider; the returned slice is always well-typed and the second
// value reports whether it came from the fallback.
func (c *httpClient) doSearch(ctx context.Context, keyword string, opts SearchOptions) ([]TrademarkRecord, bool) {
	if err := c.gate.Wait(ctx); err != nil {
		c.logger.Warn("rate gate interrupted", logging.String("keyword", keyword), logging.Err(err))
		return c.fallback.SearchResults(keyword, opts), true
	}

	var envelope searchEnvelope
	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     keyword,
			"sort":  string(opts.Sort),
			"start": fmt.Sprintf("%d", opts.Offset),
			"rows":  fmt.Sprintf("%d", opts.Limit),
		}).
		SetResult(&envelope).
		ForceContentType("application/json").
		Get("/search")

	if err != nil {
		c.logger.Warn("registry search transport failure, using fallback",
			logging.String("keyword", keyword), logging.Err(err))
		return c.fallback.SearchResults(keyword, opts), true
	}
	if resp.IsError() {
		c.logger.Warn("registry search returned non-2xx, using fallback",
			logging.String("keyword", keyword), logging.Int("status", resp.StatusCode()))
		return c.fallback.SearchResults(keyword, opts), true
	}

	records := make([]TrademarkRecord, 0, len(envelope.Response.Docs))
	for _, doc := range envelope.Response.Docs {
		if doc.SerialNumber == "" {
			c.logger.Warn("registry document missing serial number, skipped",
				logging.String("keyword", keyword))
			continue
		}
		records = append(records, doc.toRecord())
	}
	return records, false
}

func (c *httpClient) GetDetails(ctx context.Context, serialNumber string) (*TrademarkRecord, error) {
	if serialNumber == "" {
		return nil, errors.NewValidation("serial number must not be empty")
	}

	if c.cache != nil {
		key := "registry:details:" + serialNumber
		var rec TrademarkRecord
		var degraded *TrademarkRecord
		usedFallback := false
		err := c.cache.GetOrSet(ctx, key, &rec, c.cacheTTL, func(ctx context.Context) (interface{}, error) {
			loaded, fromFallback, err := c.doGetDetails(ctx, serialNumber)
			if err != nil {
				return nil, err
			}
			if fromFallback {
				usedFallback = true
				degraded = loaded
				return nil, errFallbackResult
			}
			return loaded, nil
		})
		switch {
		case err == nil:
			return &rec, nil
		case usedFallback:
			return degraded, nil
		case err == errFallbackResult:
			loaded, _, derr := c.doGetDetails(ctx, serialNumber)
			return loaded, derr
		default:
			return nil, err
		}
	}

	rec, _, err := c.doGetDetails(ctx, serialNumber)
	return rec, err
}

func (c *httpClient) doGetDetails(ctx context.Context, serialNumber string) (*TrademarkRecord, bool, error) {
	if err := c.gate.Wait(ctx); err != nil {
		rec, ferr := c.fallback.Details(serialNumber)
		return rec, true, ferr
	}

	var payload recordPayload
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&payload).
		ForceContentType("application/json").
		Get(fmt.Sprintf("/casestatus/%s/info", serialNumber))

	if err != nil || resp.IsError() || payload.SerialNumber == "" {
		status := 0
		if resp != nil {
			status = resp.StatusCode()
		}
		c.logger.Warn("registry details unavailable, using fallback",
			logging.String("serial_number", serialNumber),
			logging.Int("status", status),
			logging.Err(err))
		rec, ferr := c.fallback.Details(serialNumber)
		return rec, true, ferr
	}

	rec := payload.toRecord()
	return &rec, false, nil
}

func (c *httpClient) MonitorNewApplications(ctx context.Context, keywords []string, since time.Time) ([]TrademarkRecord, error) {
	if len(keywords) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyKeywords, "at least one keyword is required")
	}

	var out []TrademarkRecord
	seen := make(map[string]struct{})

	for _, kw := range keywords {
		records, err := c.Search(ctx, kw, SearchOptions{Sort: SortApplicationDateDesc})
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if !rec.ApplicationDate.After(since) {
				continue
			}
			if _, dup := seen[rec.SerialNumber]; dup {
				continue
			}
			seen[rec.SerialNumber] = struct{}{}
			out = append(out, rec)
		}
	}
	return out, nil
}

func (c *httpClient) FindSimilarMarks(ctx context.Context, targetMark string, opts SearchOptions) ([]TrademarkRecord, error) {
	if targetMark == "" {
		return nil, errors.NewValidation("target mark must not be empty")
	}

	var out []TrademarkRecord
	seen := make(map[string]struct{})

	for _, variation := range similarity.Variations(targetMark) {
		records, err := c.Search(ctx, variation, opts)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if rec.MarkDescription == targetMark {
				continue
			}
			if similarity.Score(targetMark, rec.MarkDescription) <= similarMarkThreshold {
				continue
			}
			if _, dup := seen[rec.SerialNumber]; dup {
				continue
			}
			seen[rec.SerialNumber] = struct{}{}
			out = append(out, rec)
		}
	}
	return out, nil
}
