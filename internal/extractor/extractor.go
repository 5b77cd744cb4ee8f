// Package extractor parses the latest exchange into a partial slot record,
// gated on explicit confirmation intent in the assistant turn.
package extractor

import (
	"strings"
	"unicode"

	"tagdesk/internal/common/logger"
	"tagdesk/internal/common/metrics"
	"tagdesk/internal/models"
	"tagdesk/internal/resolver"
)

type Extractor struct {
	resolver *resolver.Resolver
	logger   logger.Logger
}

func New(res *resolver.Resolver, log logger.Logger) *Extractor {
	return &Extractor{
		resolver: res,
		logger:   log.WithFields(map[string]interface{}{"component": "extractor"}),
	}
}

// Extract returns the partial slot record confirmed by this exchange. Without
// a confirmation marker in the assistant text the record is all-null: a
// keyword mentioned while the dialogue is still asking about it must not
// lock the field in.
func (e *Extractor) Extract(assistantText, userText string) models.SlotRecord {
	assistantLower := strings.ToLower(assistantText)
	if !hasConfirmationIntent(assistantLower) {
		return models.SlotRecord{}
	}

	combined := strings.ToLower(assistantText + "\n" + userText)
	var rec models.SlotRecord

	if strings.Contains(assistantLower, markerClient) {
		if client := extractClient(assistantText+"\n"+userText, userText); client != "" {
			rec.Client = &client
			metrics.SlotExtractions.WithLabelValues("client").Inc()
		}
	}

	if strings.Contains(assistantLower, markerPlatform) {
		e.extractPlatform(assistantLower, combined, &rec)
	}

	if strings.Contains(assistantLower, markerTagType) {
		if tt, ok := extractTagType(combined); ok {
			rec.TagType = &tt
			metrics.SlotExtractions.WithLabelValues("tagType").Inc()
		}
	}

	if strings.Contains(assistantLower, markerPriority) {
		if p, ok := extractPriority(combined); ok {
			rec.Priority = &p
			metrics.SlotExtractions.WithLabelValues("priority").Inc()
		}
	}

	e.logger.Debug("extraction result", map[string]interface{}{
		"client":      rec.Client,
		"platformId":  rec.PlatformID,
		"platformRaw": rec.PlatformRaw,
		"tagType":     rec.TagType,
		"priority":    rec.Priority,
	})

	return rec
}

func hasConfirmationIntent(assistantLower string) bool {
	for _, marker := range confirmationMarkers {
		if strings.Contains(assistantLower, marker) {
			return true
		}
	}
	return false
}

// extractPlatform runs the coarse hint pre-filter and hands the candidate to
// the resolver. The assistant's restated "platform:" line is scanned first:
// a correction turn often still names the replaced platform elsewhere in the
// exchange, and the restated line carries the one that won. A pre-filter hit
// that fails canonicalization keeps the field null but records the raw text
// so the caller can fetch suggestions.
func (e *Extractor) extractPlatform(assistantLower, combinedLower string, rec *models.SlotRecord) {
	if idx := strings.LastIndex(assistantLower, markerPlatform); idx >= 0 {
		line := assistantLower[idx+len(markerPlatform):]
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if hint := longestHint(line); hint != "" {
			e.resolveHint(hint, rec)
			return
		}
	}
	if hint := longestHint(combinedLower); hint != "" {
		e.resolveHint(hint, rec)
		return
	}
	metrics.PlatformResolutions.WithLabelValues("none").Inc()
}

// longestHint returns the longest pre-filter hint contained in text, so a
// short stray mention never shadows a fuller one.
func longestHint(text string) string {
	best := ""
	for _, group := range platformHints {
		for _, hint := range group.hints {
			if len(hint) > len(best) && strings.Contains(text, hint) {
				best = hint
			}
		}
	}
	return best
}

func (e *Extractor) resolveHint(hint string, rec *models.SlotRecord) {
	rec.PlatformRaw = hint
	if entity := e.resolver.Resolve(hint); entity != nil {
		id := entity.ID
		name := entity.CanonicalName
		rec.PlatformID = &id
		rec.PlatformName = &name
		metrics.SlotExtractions.WithLabelValues("platform").Inc()
		metrics.PlatformResolutions.WithLabelValues("resolved").Inc()
	} else {
		metrics.PlatformResolutions.WithLabelValues("ambiguous").Inc()
	}
}

// extractClient matches the known-brand list on the combined text, then falls
// back to the first capitalized non-stopword token of the raw user message.
// A heuristic, not a guarantee: sentence-initial words and acronyms produce
// false positives, which is why it lives behind the extractor boundary.
func extractClient(combined, userText string) string {
	combinedLower := strings.ToLower(combined)
	for _, brand := range knownBrands {
		if strings.Contains(combinedLower, strings.ToLower(brand)) {
			return brand
		}
	}

	for _, token := range strings.Fields(userText) {
		word := strings.TrimFunc(token, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word == "" {
			continue
		}
		if _, stop := clientStopwords[word]; stop {
			continue
		}
		runes := []rune(word)
		if unicode.IsUpper(runes[0]) {
			return word
		}
	}
	return ""
}

func extractTagType(combinedLower string) (models.TagType, bool) {
	for _, group := range tagTypeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(combinedLower, kw) {
				return group.value, true
			}
		}
	}
	return "", false
}

// extractPriority maps keyword hits to a priority. No default is synthesized:
// priority stays unset until explicitly confirmed.
func extractPriority(combinedLower string) (models.Priority, bool) {
	for _, group := range priorityKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(combinedLower, kw) {
				return group.value, true
			}
		}
	}
	return "", false
}
