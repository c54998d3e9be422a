package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carmarket"

var (
	// ListingsCreated counts new car listings by initial status
	ListingsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of car listings created",
		},
		[]string{"status"},
	)

	// CarSearches counts listing searches by mode (standard or geo)
	CarSearches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "car_searches_total",
			Help:      "Total number of car searches",
		},
		[]string{"mode"},
	)

	// SearchDuration observes search latency
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "car_search_duration_seconds",
			Help:      "Car search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	// FraudIndicators counts persisted fraud indicators
	FraudIndicators = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_indicators_total",
			Help:      "Total number of fraud indicators raised",
		},
		[]string{"type", "severity"},
	)

	// FraudCheckErrors counts fraud rules that failed and were skipped
	FraudCheckErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fraud_check_errors_total",
			Help:      "Fraud checks that errored and were treated as clean",
		},
		[]string{"check"},
	)

	// CacheLookups counts car cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "car_cache_lookups_total",
			Help:      "Car detail cache lookups by result",
		},
		[]string{"result"},
	)

	// SideEffectFailures counts best-effort side effects (notifications, email, events) that failed
	SideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed",
		},
		[]string{"kind"},
	)

	// LoginAttempts counts logins by outcome
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		},
		[]string{"result"},
	)

	// InquiriesCreated counts buyer inquiries sent to sellers
	InquiriesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inquiries_created_total",
			Help:      "Total number of inquiries created",
		},
	)

	// ReviewsCreated counts seller reviews by star rating
	ReviewsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_created_total",
			Help:      "Total number of seller reviews by rating",
		},
		[]string{"rating"},
	)
)
