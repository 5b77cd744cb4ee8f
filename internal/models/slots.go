package models

// TagType is the kind of ad tag being requested.
type TagType string

const (
	TagTypeTracker      TagType = "Tracker"
	TagTypeVideoWrapper TagType = "Video Wrapper"
)

// Priority is the requested turnaround urgency.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// PriorityWeight orders priorities for threshold comparisons (SMS routing).
func PriorityWeight(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// SlotRecord holds the four structured fields a ticket requires. A nil field
// is unconfirmed. Fields are only ever populated through the confirmation-gated
// extraction path; ambient keyword mentions never commit a field.
type SlotRecord struct {
	Client       *string   `json:"client"`
	PlatformID   *string   `json:"platformId"`
	PlatformName *string   `json:"platformName,omitempty"`
	PlatformRaw  string    `json:"platformRaw,omitempty"` // unresolved raw text, kept for feedback
	TagType      *TagType  `json:"tagType"`
	Priority     *Priority `json:"priority"`
}

// Complete reports whether all four fields are confirmed.
func (r *SlotRecord) Complete() bool {
	return r.Client != nil && r.PlatformID != nil && r.TagType != nil && r.Priority != nil
}

// MissingFields lists the unconfirmed fields, in fixed order.
func (r *SlotRecord) MissingFields() []string {
	var missing []string
	if r.Client == nil {
		missing = append(missing, "client")
	}
	if r.PlatformID == nil {
		missing = append(missing, "platform")
	}
	if r.TagType == nil {
		missing = append(missing, "tagType")
	}
	if r.Priority == nil {
		missing = append(missing, "priority")
	}
	return missing
}

// Merge folds a freshly extracted partial record into the running record.
// Extraction only emits a field when its confirmation marker reappeared, so
// any non-nil incoming value replaces the old one (supports corrections);
// nil incoming values never clear a confirmed field.
func (r *SlotRecord) Merge(p SlotRecord) {
	if p.Client != nil {
		r.Client = p.Client
	}
	if p.PlatformID != nil {
		r.PlatformID = p.PlatformID
		r.PlatformName = p.PlatformName
	}
	if p.PlatformRaw != "" {
		r.PlatformRaw = p.PlatformRaw
	}
	if p.TagType != nil {
		r.TagType = p.TagType
	}
	if p.Priority != nil {
		r.Priority = p.Priority
	}
}

// Reset clears all confirmed fields.
func (r *SlotRecord) Reset() {
	*r = SlotRecord{}
}
