// Package ticket persists tickets materialized from completed sessions.
package ticket

import (
	"time"

	"tagdesk/internal/models"
)

// Ticket is the finalized record handed to the ticket store once all four
// slots are confirmed.
type Ticket struct {
	ID           string          `json:"id" db:"id"`
	SessionID    string          `json:"sessionId" db:"session_id"`
	Client       string          `json:"client" db:"client"`
	PlatformID   string          `json:"platformId" db:"platform_id"`
	PlatformName string          `json:"platformName" db:"platform_name"`
	TagType      models.TagType  `json:"tagType" db:"tag_type"`
	Priority     models.Priority `json:"priority" db:"priority"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
}
