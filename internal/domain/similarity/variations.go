package similarity

import "strings"

// phoneticPairs is the naive substitution table applied once per pair when
// generating mark variations.  Each pair produces variants in both directions.
var phoneticPairs = [][2]string{
	{"c", "k"},
	{"f", "ph"},
	{"z", "s"},
	{"i", "y"},
}

// Variations produces a small deterministic set of transformations of mark,
// used to widen a registry search without an external fuzzy-search service.
// The returned slice always contains mark itself first, is free of
// duplicates, and is identical across calls for the same input.
//
// Transformations: whitespace removed, spaces to hyphens, hyphens to spaces,
// and each phonetic substitution (c/k, f/ph, z/s, i/y) applied once in each
// direction.
func Variations(mark string) []string {
	out := []string{mark}
	seen := map[string]struct{}{mark: {}}

	add := func(v string) {
		if v == "" {
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	add(strings.ReplaceAll(mark, " ", ""))
	add(strings.ReplaceAll(mark, " ", "-"))
	add(strings.ReplaceAll(mark, "-", " "))

	lower := strings.ToLower(mark)
	for _, p := range phoneticPairs {
		add(strings.ReplaceAll(lower, p[0], p[1]))
		add(strings.ReplaceAll(lower, p[1], p[0]))
	}

	return out
}
