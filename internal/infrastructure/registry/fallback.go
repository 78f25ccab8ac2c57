package registry

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"
)

// FallbackProvider supplies registry results when the upstream is unreachable
// or returns malformed data.  The client never propagates transport or parse
// failures to detectors; it degrades to the configured fallback instead.
type FallbackProvider interface {
	SearchResults(keyword string, opts SearchOptions) []TrademarkRecord
	Details(serialNumber string) (*TrademarkRecord, error)
}

// emptyFallback degrades every failed call to zero results, the production
// default: a registry outage yields "no new alerts this run".
type emptyFallback struct{}

// NewEmptyFallback returns the production fallback provider.
func NewEmptyFallback() FallbackProvider { return emptyFallback{} }

func (emptyFallback) SearchResults(string, SearchOptions) []TrademarkRecord { return nil }

func (emptyFallback) Details(serialNumber string) (*TrademarkRecord, error) {
	return nil, ErrRecordUnavailable
}

// syntheticFallback generates deterministic canned records for local
// development and integration tests.  The same keyword always produces the
// same records.
type syntheticFallback struct {
	baseTime time.Time
}

// NewSyntheticFallback returns a fallback provider that fabricates plausible
// registry records.  All generated dates are anchored at base so runs are
// reproducible.
func NewSyntheticFallback(base time.Time) FallbackProvider {
	return &syntheticFallback{baseTime: base.UTC()}
}

// seedFor derives a stable numeric seed from a keyword.
func seedFor(keyword string) uint64 {
	sum := sha256.Sum256([]byte(keyword))
	return binary.BigEndian.Uint64(sum[:8])
}

var syntheticSuffixes = []string{"Tech", "Labs", "Group", "Global", "Solutions"}

func (f *syntheticFallback) SearchResults(keyword string, opts SearchOptions) []TrademarkRecord {
	opts = opts.normalize()
	seed := seedFor(keyword)

	count := int(seed%3) + 1
	if count > opts.Limit {
		count = opts.Limit
	}

	records := make([]TrademarkRecord, 0, count)
	for i := 0; i < count; i++ {
		serial := fmt.Sprintf("97%06d", (seed/uint64(i+1))%1000000)
		suffix := syntheticSuffixes[(seed+uint64(i))%uint64(len(syntheticSuffixes))]
		filed := f.baseTime.AddDate(0, 0, -int((seed+uint64(i))%90))
		records = append(records, TrademarkRecord{
			SerialNumber:     serial,
			MarkDescription:  fmt.Sprintf("%s %s", keyword, suffix),
			ApplicantName:    fmt.Sprintf("%s Holdings LLC", suffix),
			ApplicationDate:  filed,
			Status:           "LIVE/PENDING",
			StatusDate:       filed,
			MarkType:         "standard character mark",
			GoodsAndServices: "IC 009: computer software",
		})
	}
	return records
}

func (f *syntheticFallback) Details(serialNumber string) (*TrademarkRecord, error) {
	seed := seedFor(serialNumber)
	filed := f.baseTime.AddDate(0, 0, -int(seed%365))
	return &TrademarkRecord{
		SerialNumber:     serialNumber,
		MarkDescription:  fmt.Sprintf("Mark %s", serialNumber),
		ApplicantName:    "Synthetic Applicant Inc",
		ApplicationDate:  filed,
		Status:           "LIVE/REGISTERED",
		StatusDate:       filed.AddDate(0, 6, 0),
		MarkType:         "standard character mark",
		GoodsAndServices: "IC 035: brand monitoring services",
	}, nil
}
