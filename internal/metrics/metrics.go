// Package metrics holds Prometheus instruments used across the service.
// All collectors are registered with the global registry, so importing this
// package anywhere is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HivesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hives_created_total",
			Help: "Cumulative number of hive records created.",
		})

	AllocationConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hive_allocation_conflicts_total",
			Help: "Duplicate-key collisions hit while inserting freshly allocated serials or tokens.",
		})

	TokenLookupHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_lookup_hits_total",
			Help: "Public token lookups that resolved to a hive.",
		})

	TokenLookupMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "token_lookup_misses_total",
			Help: "Public token lookups that resolved to nothing (uniform 404).",
		})

	ScanEventsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scan_events_total",
			Help: "QR scan events recorded from the public page.",
		})

	OwnerCacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "owner_cache_entries",
			Help: "Owner rows currently held by the settings cache.",
		})

	OwnerCacheLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "owner_cache_load_total",
			Help: "Cumulative owner rows loaded into the settings cache.",
		})

	OwnerCacheEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "owner_cache_evict_total",
			Help: "Owner rows evicted from the settings cache after idle TTL.",
		})
)

func init() {
	prometheus.MustRegister(
		HivesCreatedTotal,
		AllocationConflictsTotal,
		TokenLookupHitsTotal,
		TokenLookupMissesTotal,
		ScanEventsTotal,
		OwnerCacheEntries,
		OwnerCacheLoadTotal,
		OwnerCacheEvictTotal,
	)
}
