// Package catalog holds the canonical advertising platform entities and the
// normalized alias index the fuzzy resolver matches against.
package catalog

import (
	"sort"
	"strings"
	"sync/atomic"

	"tagdesk/internal/common/logger"
)

// Entity is one canonical platform record.
type Entity struct {
	ID            string   `json:"id"`
	CanonicalName string   `json:"name"`
	Aliases       []string `json:"aliases"`
	PriorityRank  int      `json:"priorityRank"`
	Active        bool     `json:"active"`
}

// Definition is the raw catalog entry as loaded from configuration.
type Definition struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Aliases      []string `json:"aliases"`
	PriorityRank int      `json:"priorityRank"`
	Active       bool     `json:"active"`
}

// Catalog is an immutable snapshot of the platform set. Safe for concurrent
// reads; replaced wholesale on update, never mutated in place.
type Catalog struct {
	entities []*Entity
	byKey    map[string]*Entity
}

// Normalize lowercases and strips every character outside [a-z0-9], so
// "Display & Video 360" and "display-video-360" collapse to the same key.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Build constructs the catalog and its alias index. Duplicate normalized keys
// are resolved deterministically: last-registered wins, with a warning.
func Build(defs []Definition, log logger.Logger) *Catalog {
	c := &Catalog{
		byKey: make(map[string]*Entity),
	}

	for _, def := range defs {
		e := &Entity{
			ID:            def.ID,
			CanonicalName: def.Name,
			Aliases:       append([]string(nil), def.Aliases...),
			PriorityRank:  def.PriorityRank,
			Active:        def.Active,
		}
		c.entities = append(c.entities, e)

		keys := make([]string, 0, len(e.Aliases)+1)
		keys = append(keys, e.CanonicalName)
		keys = append(keys, e.Aliases...)

		for _, raw := range keys {
			key := Normalize(raw)
			if key == "" {
				continue
			}
			if prev, exists := c.byKey[key]; exists && prev.ID != e.ID {
				log.Warn("duplicate catalog alias, last registration wins", map[string]interface{}{
					"alias":      raw,
					"key":        key,
					"previousId": prev.ID,
					"platformId": e.ID,
				})
			}
			c.byKey[key] = e
		}
	}

	sort.SliceStable(c.entities, func(i, j int) bool {
		if c.entities[i].PriorityRank != c.entities[j].PriorityRank {
			return c.entities[i].PriorityRank < c.entities[j].PriorityRank
		}
		return c.entities[i].ID < c.entities[j].ID
	})

	return c
}

// LookupExact returns the entity registered under an already-normalized key.
func (c *Catalog) LookupExact(normalizedKey string) *Entity {
	return c.byKey[normalizedKey]
}

// All returns entities ordered by ascending priority rank.
func (c *Catalog) All(activeOnly bool) []*Entity {
	out := make([]*Entity, 0, len(c.entities))
	for _, e := range c.entities {
		if activeOnly && !e.Active {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Get returns the entity with the given id.
func (c *Catalog) Get(id string) *Entity {
	for _, e := range c.entities {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Len reports the number of entities in the snapshot.
func (c *Catalog) Len() int {
	return len(c.entities)
}

// Holder publishes the current catalog snapshot and supports hot whole-catalog
// replacement. Readers always see a consistent snapshot.
type Holder struct {
	current atomic.Pointer[Catalog]
}

func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Current returns the active catalog snapshot.
func (h *Holder) Current() *Catalog {
	return h.current.Load()
}

// Replace swaps in a freshly built catalog (updatePlatforms).
func (h *Holder) Replace(c *Catalog) {
	h.current.Store(c)
}
