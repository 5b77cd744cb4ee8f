package extractor

import (
	"testing"

	"tagdesk/internal/catalog"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/models"
	"tagdesk/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	cat := catalog.Build(catalog.DefaultDefinitions(), logger.NewNoOpLogger())
	return New(resolver.NewStatic(cat), logger.NewNoOpLogger())
}

func TestExtract_GateClosedWithoutConfirmationIntent(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name      string
		assistant string
		user      string
	}{
		{
			name:      "open question about platform",
			assistant: "Which platform do you need the tag for?",
			user:      "DV360 please, it's urgent",
		},
		{
			name:      "mid-conversation probing",
			assistant: "Got it. And what priority should this have?",
			user:      "high priority, client is Nike",
		},
		{
			name:      "empty assistant turn",
			assistant: "",
			user:      "Nike, DV360, tracker, high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Extract(tt.assistant, tt.user)
			assert.Nil(t, rec.Client)
			assert.Nil(t, rec.PlatformID)
			assert.Nil(t, rec.TagType)
			assert.Nil(t, rec.Priority)
			assert.Empty(t, rec.PlatformRaw)
		})
	}
}

func TestExtract_ConfirmationSummaryCommitsAllFields(t *testing.T) {
	e := newTestExtractor(t)

	assistant := `Here's what I have so far, please confirm:
Client: Nike
Platform: Google DV360
Tag Type: Tracker
Priority: High`
	user := "yes, that's right"

	rec := e.Extract(assistant, user)

	require.NotNil(t, rec.Client)
	assert.Equal(t, "Nike", *rec.Client)
	require.NotNil(t, rec.PlatformID)
	assert.Equal(t, "dv360", *rec.PlatformID)
	require.NotNil(t, rec.PlatformName)
	assert.Equal(t, "Google DV360", *rec.PlatformName)
	require.NotNil(t, rec.TagType)
	assert.Equal(t, models.TagTypeTracker, *rec.TagType)
	require.NotNil(t, rec.Priority)
	assert.Equal(t, models.PriorityHigh, *rec.Priority)
}

func TestExtract_SubsetOfFields(t *testing.T) {
	e := newTestExtractor(t)

	// Only platform and priority are restated; client and tag type stay null.
	assistant := "To confirm - Platform: The Trade Desk, Priority: Medium. What client is this for?"
	rec := e.Extract(assistant, "it's for later")

	assert.Nil(t, rec.Client)
	require.NotNil(t, rec.PlatformID)
	assert.Equal(t, "ttd", *rec.PlatformID)
	assert.Nil(t, rec.TagType)
	require.NotNil(t, rec.Priority)
	assert.Equal(t, models.PriorityMedium, *rec.Priority)
}

func TestExtract_PlatformTypoResolvesThroughFuzzyMatch(t *testing.T) {
	e := newTestExtractor(t)

	assistant := "Please confirm - Platform: trade desk"
	rec := e.Extract(assistant, "confirmed")

	require.NotNil(t, rec.PlatformID)
	assert.Equal(t, "ttd", *rec.PlatformID)
	assert.NotEmpty(t, rec.PlatformRaw)
}

func TestExtract_UnresolvedPlatformKeepsRawOnly(t *testing.T) {
	cat := catalog.Build([]catalog.Definition{
		{ID: "dv360", Name: "Google DV360", Aliases: []string{"dv360"}, PriorityRank: 1, Active: true},
	}, logger.NewNoOpLogger())
	e := New(resolver.NewStatic(cat), logger.NewNoOpLogger())

	// "yahoo" passes the hint pre-filter but is not in this catalog.
	assistant := "Summary so far - Platform: yahoo"
	rec := e.Extract(assistant, "ok")

	assert.Nil(t, rec.PlatformID)
	assert.Equal(t, "yahoo", rec.PlatformRaw)
}

func TestExtract_TagTypeKeywords(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name string
		text string
		want models.TagType
	}{
		{"tracker", "Please confirm - Tag Type: tracker", models.TagTypeTracker},
		{"tracking variant", "Confirm tag type: a tracking pixel", models.TagTypeTracker},
		{"video wrapper", "Please confirm - Tag Type: Video Wrapper", models.TagTypeVideoWrapper},
		{"wrapper shorthand", "Confirm tag type: the wrapper one", models.TagTypeVideoWrapper},
		{"wrapper wins over tracker mention", "Confirm tag type: video wrapper with tracking", models.TagTypeVideoWrapper},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Extract(tt.text, "yes")
			require.NotNil(t, rec.TagType)
			assert.Equal(t, tt.want, *rec.TagType)
		})
	}
}

func TestExtract_PriorityKeywords(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name string
		text string
		want models.Priority
	}{
		{"high", "Please confirm - Priority: High", models.PriorityHigh},
		{"urgent", "Confirm priority: urgent turnaround", models.PriorityHigh},
		{"asap", "Confirm priority: asap", models.PriorityHigh},
		{"medium", "Confirm priority: medium", models.PriorityMedium},
		{"normal", "Confirm priority: normal turnaround", models.PriorityMedium},
		{"low", "Confirm priority: low", models.PriorityLow},
		{"no rush maps to low not high", "Confirm priority: no rush on this one", models.PriorityLow},
		{"whenever", "Confirm priority: whenever you get to it", models.PriorityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Extract(tt.text, "yes")
			require.NotNil(t, rec.Priority)
			assert.Equal(t, tt.want, *rec.Priority)
		})
	}
}

func TestExtract_PriorityNeverDefaulted(t *testing.T) {
	e := newTestExtractor(t)

	rec := e.Extract("Please confirm - Priority: to be decided", "sure")
	assert.Nil(t, rec.Priority)
}

func TestExtractClient(t *testing.T) {
	tests := []struct {
		name     string
		combined string
		user     string
		want     string
	}{
		{
			name:     "known brand in assistant text",
			combined: "Confirm client: Nike\nyes",
			user:     "yes",
			want:     "Nike",
		},
		{
			name:     "known brand case-insensitive",
			combined: "confirm client: the tag is for nike",
			user:     "the tag is for nike",
			want:     "Nike",
		},
		{
			name:     "capitalized fallback skips stopwords",
			combined: "confirm client",
			user:     "The client is Acme for this one",
			want:     "Acme",
		},
		{
			name:     "punctuation trimmed",
			combined: "confirm client",
			user:     "the client is Globex, thanks",
			want:     "Globex",
		},
		{
			name:     "no capitalized token",
			combined: "confirm client",
			user:     "the client is unknown for now",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractClient(tt.combined, tt.user))
		})
	}
}

func TestExtract_FieldMarkerRequiredPerField(t *testing.T) {
	e := newTestExtractor(t)

	// Confirmation intent present, but only the client marker appears. The
	// platform mention in the user text must not commit.
	assistant := "Please confirm - Client: Nike"
	rec := e.Extract(assistant, "yes, and it'll be on DV360")

	require.NotNil(t, rec.Client)
	assert.Nil(t, rec.PlatformID)
	assert.Empty(t, rec.PlatformRaw)
}

func TestExtract_CorrectionMentioningOldPlatform(t *testing.T) {
	e := newTestExtractor(t)

	// The correction text still names the replaced platform; the assistant's
	// restated platform line decides which one commits.
	tests := []struct {
		name      string
		assistant string
		user      string
		wantID    string
	}{
		{
			name:      "old platform named in user correction",
			assistant: "Updated. Please confirm - Platform: The Trade Desk",
			user:      "make it trade desk, not dv360",
			wantID:    "ttd",
		},
		{
			name:      "short new hint against longer old mention",
			assistant: "Got it. Please confirm - Platform: ttd",
			user:      "actually ttd, not the dv 360 one",
			wantID:    "ttd",
		},
		{
			name:      "switch back to dv360",
			assistant: "Switched back. Please confirm - Platform: Google DV360",
			user:      "no wait, dv360 after all, forget the trade desk",
			wantID:    "dv360",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.Extract(tt.assistant, tt.user)
			require.NotNil(t, rec.PlatformID)
			assert.Equal(t, tt.wantID, *rec.PlatformID)
		})
	}
}

func TestExtract_CorrectionReconfirmsField(t *testing.T) {
	e := newTestExtractor(t)

	first := e.Extract("Please confirm - Platform: Google DV360", "yes")
	require.NotNil(t, first.PlatformID)
	assert.Equal(t, "dv360", *first.PlatformID)

	second := e.Extract("Updated. Please confirm - Platform: The Trade Desk", "correct")
	require.NotNil(t, second.PlatformID)
	assert.Equal(t, "ttd", *second.PlatformID)

	var running models.SlotRecord
	running.Merge(first)
	running.Merge(second)
	assert.Equal(t, "ttd", *running.PlatformID)
	assert.Equal(t, "The Trade Desk", *running.PlatformName)
}
