package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "lexlsh"

// Fingerprint encoder metrics. The source label is "vector" or "text".
var (
	EncodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_duration_seconds",
			Help:      "Time to fingerprint one vector",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
		},
		[]string{"source"},
	)

	EncodeTokens = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_tokens",
			Help:      "Fingerprint tokens produced per vector",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	EncodeShingles = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encode_shingles",
			Help:      "Shingles hashed per vector",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		},
	)

	EncodeEmptyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encode_empty_total",
			Help:      "Vectors that produced no fingerprint",
		},
		[]string{"source"},
	)

	SearchCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_candidates",
			Help:      "Candidates returned by the index per search",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"mode"},
	)
)

var encMetricsRegistered bool

// RegisterEncodingMetrics registers encoder and search metrics. Must be called once from main.
func RegisterEncodingMetrics() {
	if encMetricsRegistered {
		return
	}
	prometheus.MustRegister(EncodeDuration)
	prometheus.MustRegister(EncodeTokens)
	prometheus.MustRegister(EncodeShingles)
	prometheus.MustRegister(EncodeEmptyTotal)
	prometheus.MustRegister(SearchCandidates)
	encMetricsRegistered = true
}
