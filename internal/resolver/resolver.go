// Package resolver maps raw user-supplied platform strings to canonical
// catalog entities via normalized exact lookup, substring containment, and
// edit-distance similarity.
package resolver

import (
	"sort"
	"strings"

	"tagdesk/internal/catalog"
)

const (
	// AcceptThreshold is the minimum similarity for Resolve to auto-accept a
	// fuzzy match. Strict on purpose: a false positive silently corrupts a
	// ticket, a miss just asks the user again.
	AcceptThreshold = 0.8

	// SuggestThreshold is the floor for Suggest candidates. Loose enough to
	// surface near-miss typos without flooding irrelevant entities.
	SuggestThreshold = 0.3

	// substringScore is the fixed similarity when one normalized string
	// strictly contains the other. Below an exact key match, above most
	// edit-distance scores, so "Trade Desk" inside "The Trade Desk" still
	// resolves confidently.
	substringScore = 0.9

	// DefaultSuggestLimit caps the ranked candidate list.
	DefaultSuggestLimit = 5
)

// Suggestion is one ranked resolution candidate.
type Suggestion struct {
	Entity *catalog.Entity `json:"platform"`
	Score  float64         `json:"score"`
}

// Source provides the current catalog snapshot. catalog.Holder satisfies it.
type Source interface {
	Current() *catalog.Catalog
}

// staticSource wraps a fixed catalog for callers that do not hot-swap.
type staticSource struct{ c *catalog.Catalog }

func (s staticSource) Current() *catalog.Catalog { return s.c }

// Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	source Source
}

func New(source Source) *Resolver {
	return &Resolver{source: source}
}

// NewStatic builds a resolver over a fixed catalog snapshot.
func NewStatic(c *catalog.Catalog) *Resolver {
	return &Resolver{source: staticSource{c: c}}
}

// Resolve maps raw input to a single entity, or nil when inconclusive.
// An exact normalized alias lookup always outranks any fuzzy score.
func (r *Resolver) Resolve(raw string) *catalog.Entity {
	key := catalog.Normalize(raw)
	if key == "" {
		return nil
	}

	cat := r.source.Current()
	if e := cat.LookupExact(key); e != nil && e.Active {
		return e
	}

	best, score := r.bestMatch(cat, key)
	if best != nil && score > AcceptThreshold {
		return best
	}
	return nil
}

// Suggest returns up to limit ranked candidates with similarity above the
// suggestion floor, ties broken by ascending priority rank.
func (r *Resolver) Suggest(raw string, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	key := catalog.Normalize(raw)
	if key == "" {
		return nil
	}

	cat := r.source.Current()
	var out []Suggestion
	for _, e := range cat.All(true) {
		score := entityScore(e, key)
		if score > SuggestThreshold {
			out = append(out, Suggestion{Entity: e, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Entity.PriorityRank < out[j].Entity.PriorityRank
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// bestMatch returns the active entity with the highest similarity to key.
func (r *Resolver) bestMatch(cat *catalog.Catalog, key string) (*catalog.Entity, float64) {
	var best *catalog.Entity
	bestScore := 0.0

	// All() iterates in ascending priority rank, so ties keep the
	// more-preferred entity.
	for _, e := range cat.All(true) {
		score := entityScore(e, key)
		if score > bestScore {
			best = e
			bestScore = score
		}
	}
	return best, bestScore
}

// entityScore is the max similarity of key against the canonical name and
// every alias of the entity.
func entityScore(e *catalog.Entity, key string) float64 {
	max := Similarity(key, catalog.Normalize(e.CanonicalName))
	for _, a := range e.Aliases {
		if s := Similarity(key, catalog.Normalize(a)); s > max {
			max = s
		}
	}
	return max
}

// Similarity scores two normalized strings in [0,1]. Equal strings score 1.0,
// strict containment scores the fixed substring bonus, everything else is
// (len(longer) - levenshtein) / len(longer).
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if len(longer) < len(shorter) {
		longer, shorter = shorter, longer
	}
	if len(longer) == 0 {
		return 1.0
	}
	if a == b {
		return 1.0
	}
	if shorter != "" && strings.Contains(longer, shorter) {
		return substringScore
	}
	dist := Levenshtein(a, b)
	return float64(len(longer)-dist) / float64(len(longer))
}

// Levenshtein computes unit-cost edit distance with the standard two-row DP.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
