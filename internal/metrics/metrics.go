// Package metrics provides Prometheus instrumentation for the lending engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LoansPriced counts pricing computations by disbursement direction.
	LoansPriced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_loans_priced_total",
		Help: "Pricing computations performed",
	}, []string{"direction"})

	// FeeCapApplied counts computations where the statutory cap reduced rates.
	FeeCapApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_fee_cap_applied_total",
		Help: "Computations reduced by the statutory fee cap",
	}, []string{"component"})

	// EligibilityBlocks counts gate rejections by check and reason.
	EligibilityBlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_eligibility_blocks_total",
		Help: "Eligibility rejections",
	}, []string{"check", "reason"})

	// AssembleOutcomes counts assemble calls by outcome.
	AssembleOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_assemble_outcomes_total",
		Help: "Loan assembly outcomes",
	}, []string{"outcome"})

	AssembleLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lending_assemble_latency_seconds",
		Help:    "Loan assembly latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	RateCardCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lending_rate_card_cache_lookups_total",
		Help: "Rate card cache lookups by result",
	}, []string{"result"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
