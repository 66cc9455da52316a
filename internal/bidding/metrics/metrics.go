package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the bidding module.
// Tracks placed bids, rule rejections, status changes and lock contention.
type Metrics struct {
	BidsPlaced       prometheus.Counter
	BidsRefused      *prometheus.CounterVec
	StatusChanges    *prometheus.CounterVec
	CascadeRejected  prometheus.Counter
	PlaceBidDuration prometheus.Histogram
	LockWaitDuration prometheus.Histogram
}

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// New registers the bidding metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the bidding metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BidsPlaced: f.NewCounter(prometheus.CounterOpts{
			Name: "maklarsystem_bids_placed_total",
			Help: "Total number of bids accepted for placement",
		}),
		BidsRefused: f.NewCounterVec(prometheus.CounterOpts{
			Name: "maklarsystem_bids_refused_total",
			Help: "Bids refused before placement, by reason",
		}, []string{"reason"}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "maklarsystem_bid_status_changes_total",
			Help: "Bid status transitions, by target status",
		}, []string{"status"}),
		CascadeRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "maklarsystem_bids_cascade_rejected_total",
			Help: "Active bids rejected because a competing bid was accepted",
		}),
		PlaceBidDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "maklarsystem_place_bid_duration_seconds",
			Help:    "Duration of PlaceBid operations including the listing lock",
			Buckets: durationBuckets,
		}),
		LockWaitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "maklarsystem_listing_lock_wait_seconds",
			Help:    "Time spent waiting for a per-listing lock",
			Buckets: durationBuckets,
		}),
	}
}

func (m *Metrics) IncrementBidsPlaced() {
	m.BidsPlaced.Inc()
}

// IncrementBidsRefused records a refused bid. reason is a short code:
// "validation", "increment" or "closed".
func (m *Metrics) IncrementBidsRefused(reason string) {
	m.BidsRefused.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementStatusChange(status string) {
	m.StatusChanges.WithLabelValues(status).Inc()
}

func (m *Metrics) AddCascadeRejected(n int) {
	m.CascadeRejected.Add(float64(n))
}

// ObservePlaceBid records the duration of a PlaceBid operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObservePlaceBid(start time.Time) {
	m.PlaceBidDuration.Observe(time.Since(start).Seconds())
}

// ObserveLockWait records how long a caller waited for a listing lock.
func (m *Metrics) ObserveLockWait(start time.Time) {
	m.LockWaitDuration.Observe(time.Since(start).Seconds())
}
