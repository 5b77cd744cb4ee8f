// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TurnsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_turns_total",
			Help: "Total number of conversation turns processed",
		},
		[]string{"status"},
	)

	TurnDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "intake_turn_duration_seconds",
			Help: "Duration of turn processing in seconds",
		},
	)

	PlatformResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_platform_resolutions_total",
			Help: "Platform resolution outcomes",
		},
		[]string{"outcome"}, // resolved | ambiguous | none
	)

	SlotExtractions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_slot_extractions_total",
			Help: "Slot fields committed through confirmation-gated extraction",
		},
		[]string{"field"},
	)

	ResponderFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_responder_failures_total",
			Help: "Dialogue responder failures by error code",
		},
		[]string{"error_code"},
	)

	TicketsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_tickets_created_total",
			Help: "Tickets materialized from completed sessions",
		},
	)
)
