// Package metrics exposes Prometheus counters and gauges for the
// dispatcher and session layers. Grounded on gcsfuse's
// internal/fs.monitoringFileSystem (per-method request counter) and
// internal/gcsx.monitoring_bucket.go (package-level vars + init-time
// MustRegister), reworked around per-opcode/per-status HGFS requests
// instead of FUSE ops.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts every dispatched request, by opcode and the
	// protocol status it was answered with.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hgfs_requests_total",
			Help: "Number of HGFS requests handled, by opcode and reply status.",
		},
		[]string{"opcode", "status"},
	)

	// CachedNodes reports the current size of a session's open-file LRU.
	CachedNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hgfs_cached_nodes",
			Help: "Number of file nodes on the session's cached-open LRU list, by session.",
		},
		[]string{"session"},
	)

	// CacheEvictionsTotal counts LRU evictions of cached-open file nodes.
	CacheEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hgfs_cache_evictions_total",
			Help: "Number of cached-open file nodes evicted from the LRU to stay under the cap.",
		},
	)

	// SearchesActive reports the number of live (not yet closed) search
	// handles, by session.
	SearchesActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hgfs_searches_active",
			Help: "Number of open SearchOpen handles, by session.",
		},
		[]string{"session"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, CachedNodes, CacheEvictionsTotal, SearchesActive)
}

// RecordRequest increments RequestsTotal for one dispatched request.
func RecordRequest(opcode, status string) {
	RequestsTotal.With(prometheus.Labels{"opcode": opcode, "status": status}).Inc()
}
