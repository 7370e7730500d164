package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JoinsTotal counts join attempts by outcome (offered, waiting,
	// capacity_error, error).
	JoinsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_joins_total",
			Help: "Total waiting list join attempts by outcome",
		},
		[]string{"outcome"},
	)

	PromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_promotions_total",
			Help: "Total waiting entries promoted to offered",
		},
	)

	ExpirationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_expirations_total",
			Help: "Total offers expired by the sweeper",
		},
	)

	PurchasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waitlist_purchases_total",
			Help: "Total offers finalized into purchased tickets",
		},
	)

	// CacheRequests counts cache lookups by outcome (hit, stale, miss, error).
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_requests_total",
			Help: "Cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	CacheRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cache_background_refreshes_total",
			Help: "Background stale-while-revalidate refreshes started",
		},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admission_job_duration_seconds",
			Help:    "Duration of sweeper/promoter runs",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"job"},
	)

	RefundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_refunds_total",
			Help: "Refund calls to the payment provider by result",
		},
		[]string{"result"},
	)
)
