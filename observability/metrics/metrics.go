// Package metrics exposes the node's Prometheus gauges, counters, and
// histograms: fork-choice head/safe-target tracking, state-transition
// timing, and the vote pools' throughput.
package metrics

import (
	"fmt"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var fastBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 1}
var stfBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2}

var NodeInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "leanchoice_node_info",
	Help: "Node information (always 1)",
}, []string{"version"})

var NodeStartTime = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_node_start_time_seconds",
	Help: "Unix timestamp the node started at",
})

var HeadSlot = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_head_slot",
	Help: "Slot of the current fork-choice head",
})

var CurrentSlot = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_current_slot",
	Help: "Slot implied by the store's logical clock",
})

var SafeTargetSlot = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_safe_target_slot",
	Help: "Slot of the current conservative voting target",
})

var BlockProcessingTime = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "leanchoice_block_processing_time_seconds",
	Help:    "Time taken to admit a block via OnBlock",
	Buckets: fastBuckets,
})

var VotesAccepted = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "leanchoice_votes_accepted_total",
	Help: "Total votes accepted into a vote pool",
}, []string{"pool"})

var VotesRejectedFuture = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "leanchoice_votes_rejected_future_total",
	Help: "Total votes rejected for naming a slot beyond current time",
})

var LatestJustifiedSlot = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_latest_justified_slot",
	Help: "Latest justified slot across admitted states",
})

var LatestFinalizedSlot = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_latest_finalized_slot",
	Help: "Latest finalized slot of the head's state",
})

var StateTransitionTime = prometheus.NewHistogram(prometheus.HistogramOpts{
	Name:    "leanchoice_state_transition_time_seconds",
	Help:    "Time to run the injected state-transition function",
	Buckets: stfBuckets,
})

var ValidatorsCount = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "leanchoice_validators_count",
	Help: "Number of validators in the active configuration",
})

func init() {
	prometheus.MustRegister(
		NodeInfo,
		NodeStartTime,
		HeadSlot,
		CurrentSlot,
		SafeTargetSlot,
		BlockProcessingTime,
		VotesAccepted,
		VotesRejectedFuture,
		LatestJustifiedSlot,
		LatestFinalizedSlot,
		StateTransitionTime,
		ValidatorsCount,
	)
}

// Serve starts the Prometheus metrics HTTP server on port in the
// background.
func Serve(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			log.Printf("metrics server error: %v", err)
		}
	}()
}
