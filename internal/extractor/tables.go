package extractor

import "tagdesk/internal/models"

// confirmationMarkers gate extraction as a whole: no marker in the assistant
// turn means no field is committed this turn, whatever the user said.
var confirmationMarkers = []string{
	"confirm",
	"summary",
	"ready to create",
	"here's what i have",
	"here is what i have",
	"✓",
	"✅",
}

// Field markers gate each field independently, so a turn can confirm a subset.
const (
	markerClient   = "client:"
	markerPlatform = "platform:"
	markerTagType  = "tag type:"
	markerPriority = "priority:"
)

// knownBrands is the short advertiser list the client heuristic checks before
// falling back to the first-capitalized-token guess.
var knownBrands = []string{
	"Nike", "Adidas", "Puma", "Coca-Cola", "Pepsi", "Samsung", "Sony", "Apple",
	"Toyota", "Volkswagen", "BMW", "McDonald's", "Burger King", "L'Oreal",
	"Unilever", "Nestle", "Ikea", "Zalando", "Vodafone", "Telekom",
}

// clientStopwords are capitalized tokens that are never a client name.
var clientStopwords = map[string]struct{}{
	"I": {}, "A": {}, "The": {}, "For": {}, "On": {}, "To": {},
}

// platformHints is the coarse substring pre-filter, grouped by canonical
// platform. It only picks the candidate string handed to the resolver for
// canonicalization; the resolver's normalized-key matching has the final say.
var platformHints = []struct {
	candidate string
	hints     []string
}{
	{candidate: "Google DV360", hints: []string{"dv360", "dv 360", "display & video", "display and video", "bid manager", "dbm"}},
	{candidate: "The Trade Desk", hints: []string{"trade desk", "tradedesk", "ttd"}},
	{candidate: "Campaign Manager 360", hints: []string{"cm360", "cm 360", "campaign manager", "dcm"}},
	{candidate: "Amazon DSP", hints: []string{"amazon"}},
	{candidate: "Xandr", hints: []string{"xandr", "appnexus", "microsoft invest"}},
	{candidate: "MediaMath", hints: []string{"mediamath", "media math"}},
	{candidate: "Yahoo DSP", hints: []string{"yahoo", "verizon media"}},
	{candidate: "Adform", hints: []string{"adform"}},
	{candidate: "Criteo", hints: []string{"criteo"}},
	{candidate: "StackAdapt", hints: []string{"stackadapt", "stack adapt"}},
}

// tagTypeKeywords maps containment hits to the two allowed tag types.
// "video wrapper" phrases are checked before bare "tracker"/"tracking" so
// combined mentions stay deterministic.
var tagTypeKeywords = []struct {
	keywords []string
	value    models.TagType
}{
	{keywords: []string{"video wrapper", "video tag", "wrapper"}, value: models.TagTypeVideoWrapper},
	{keywords: []string{"tracker", "tracking"}, value: models.TagTypeTracker},
}

// priorityKeywords maps containment hits to a priority. The low phrases come
// first so "no rush" never trips a shorter high keyword.
var priorityKeywords = []struct {
	keywords []string
	value    models.Priority
}{
	{keywords: []string{"no rush", "when possible", "whenever", "low"}, value: models.PriorityLow},
	{keywords: []string{"urgent", "asap", "high", "critical"}, value: models.PriorityHigh},
	{keywords: []string{"medium", "normal"}, value: models.PriorityMedium},
}
