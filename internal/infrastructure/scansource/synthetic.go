package scansource

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strings"
)

// syntheticSource fabricates deterministic scan results for development and
// integration tests.  The same (keyword, scope) pair always yields the same
// items.
type syntheticSource struct {
	kind string
}

// NewSyntheticSource returns a deterministic generator for the given surface
// kind ("domain", "marketplace" or "social").
func NewSyntheticSource(kind string) Source {
	return &syntheticSource{kind: kind}
}

func (s *syntheticSource) Name() string { return s.kind + "-synthetic" }

func (s *syntheticSource) Scan(_ context.Context, keyword, scope string) ([]RawItem, error) {
	switch s.kind {
	case "domain":
		return s.domains(keyword, scope), nil
	case "marketplace":
		return s.listings(keyword, scope), nil
	case "social":
		return s.posts(keyword, scope), nil
	default:
		return nil, nil
	}
}

func synthSeed(keyword, scope string) uint64 {
	sum := sha256.Sum256([]byte(keyword + "|" + scope))
	return binary.BigEndian.Uint64(sum[:8])
}

func (s *syntheticSource) domains(keyword, tld string) []RawItem {
	base := strings.ToLower(strings.ReplaceAll(keyword, " ", ""))
	seed := synthSeed(keyword, tld)

	candidates := []string{
		base + "-store" + tld,
		base + "shop" + tld,
		swapOneRune(base, seed) + tld,
		"get" + base + tld,
	}

	items := make([]RawItem, 0, len(candidates))
	for _, name := range candidates {
		items = append(items, RawItem{
			Key:      name,
			Title:    name,
			Platform: tld,
			Data:     map[string]interface{}{"registrar": "synthetic"},
		})
	}
	return items
}

// swapOneRune produces a deliberate near-miss of base, standing in for a
// typo-squatted registration.
func swapOneRune(base string, seed uint64) string {
	if len(base) < 2 {
		return base + "x"
	}
	runes := []rune(base)
	i := int(seed % uint64(len(runes)-1))
	replacement := rune('a' + (seed % 26))
	if runes[i] == replacement {
		replacement = rune('a' + ((seed + 1) % 26))
	}
	runes[i] = replacement
	return string(runes)
}

func (s *syntheticSource) listings(keyword, platform string) []RawItem {
	seed := synthSeed(keyword, platform)
	count := int(seed%3) + 1

	items := make([]RawItem, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("lst-%d", (seed+uint64(i))%100000)
		items = append(items, RawItem{
			Key:         id,
			Title:       fmt.Sprintf("%s compatible accessory %d", keyword, i+1),
			Description: fmt.Sprintf("Unauthorized reseller listing mentioning %s", keyword),
			URL:         fmt.Sprintf("https://%s.example/listing/%s", platform, id),
			Platform:    platform,
			Data:        map[string]interface{}{"price": float64((seed+uint64(i))%9000) / 100},
		})
	}
	return items
}

var synthPostTemplates = []string{
	"Just tried %s and I love it",
	"Is %s a scam? Package never arrived",
	"Comparing %s with alternatives this week",
}

func (s *syntheticSource) posts(keyword, platform string) []RawItem {
	seed := synthSeed(keyword, platform)
	count := int(seed%uint64(len(synthPostTemplates))) + 1

	items := make([]RawItem, 0, count)
	for i := 0; i < count; i++ {
		content := fmt.Sprintf(synthPostTemplates[(int(seed)+i)%len(synthPostTemplates)], keyword)
		id := fmt.Sprintf("post-%d", (seed+uint64(i))%100000)
		items = append(items, RawItem{
			Key:         id,
			Title:       fmt.Sprintf("Post by user%d", (seed+uint64(i))%1000),
			Description: content,
			URL:         fmt.Sprintf("https://%s.example/p/%s", platform, id),
			Platform:    platform,
			Sentiment:   ClassifySentiment(content),
		})
	}
	return items
}
