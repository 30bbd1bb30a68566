package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	journeyOutcomeCreated   = "created"
	journeyOutcomeUpdated   = "updated"
	journeyOutcomeConverted = "converted"
)

var (
	// Recorded events partitioned by event type
	eventsRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribution_events_recorded_total",
			Help: "Total number of attribution events recorded",
		},
		[]string{"event_type"},
	)

	// Journey upserts partitioned by what the touchpoint did to the journey
	journeyUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribution_journey_updates_total",
			Help: "Total number of customer journey updates",
		},
		[]string{"outcome"},
	)

	attributionCalculationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attribution_calculations_total",
			Help: "Total number of attribution calculations persisted",
		},
	)

	attributionCalculationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attribution_calculation_duration_seconds",
			Help:    "Attribution calculation latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Campaigns skipped while aggregating performance
	campaignAggregationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attribution_campaign_aggregation_failures_total",
			Help: "Total number of campaigns omitted from performance reports after a failure",
		},
	)

	reportCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attribution_report_cache_lookups_total",
			Help: "Attribution report cache lookups partitioned by result",
		},
		[]string{"result"},
	)
)
