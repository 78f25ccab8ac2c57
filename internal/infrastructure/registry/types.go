// Package registry mediates all access to the external trademark registry:
// rate limiting, response normalization, caching, and fallback behavior when
// the upstream is unavailable.
package registry

import "time"

// TrademarkRecord is the normalized registry search/detail result.  It is a
// transient value passed to the detectors, never persisted.
type TrademarkRecord struct {
	SerialNumber       string     `json:"serial_number"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	MarkDescription    string     `json:"mark_description"`
	ApplicantName      string     `json:"applicant_name"`
	ApplicationDate    time.Time  `json:"application_date"`
	RegistrationDate   *time.Time `json:"registration_date,omitempty"`
	Status             string     `json:"status"`
	StatusDate         time.Time  `json:"status_date"`
	MarkType           string     `json:"mark_type"`
	GoodsAndServices   string     `json:"goods_and_services"`
}

// SortOrder identifies a registry-side sort for search results.
type SortOrder string

const (
	SortRelevance           SortOrder = "relevance"
	SortApplicationDateDesc SortOrder = "application_date_desc"
)

// SearchOptions carries paging and sorting for a registry search.
type SearchOptions struct {
	Sort   SortOrder
	Offset int
	Limit  int
}

// normalize applies the registry defaults for unset fields.
func (o SearchOptions) normalize() SearchOptions {
	if o.Sort == "" {
		o.Sort = SortRelevance
	}
	if o.Limit <= 0 {
		o.Limit = 50
	}
	if o.Limit > 200 {
		o.Limit = 200
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
