// Package scansource provides the pluggable scan sources the non-trademark
// detectors consume: candidate domains, marketplace listings, and social
// posts.  Real implementations query HTTP collaborators; the synthetic
// implementation generates deterministic data for development and tests.
// Like the registry client, sources absorb transport failures and degrade to
// empty results.
package scansource

import "context"

// RawItem is one scanned candidate from any surface.  Key is the stable
// source identity (domain name, listing id, post id) used to build alert
// detection keys.
type RawItem struct {
	Key         string                 `json:"key"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	URL         string                 `json:"url,omitempty"`
	Platform    string                 `json:"platform,omitempty"`
	Sentiment   Sentiment              `json:"sentiment,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// Sentiment is the coarse tone classification of a social post.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Source is the scan contract shared by all surfaces.  Scope is the
// TLD for domain scans and the platform name for marketplace and social
// scans.
type Source interface {
	Name() string
	Scan(ctx context.Context, keyword, scope string) ([]RawItem, error)
}
