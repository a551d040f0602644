// Package metrics provides Prometheus metrics for the Aster service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProposalTransitionsTotal tracks proposal status transitions
	ProposalTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "proposal",
			Name:      "transitions_total",
			Help:      "Total number of proposal status transitions",
		},
		[]string{"from", "to"},
	)

	// GateDenialsTotal tracks workflow gate denials by reason code
	GateDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "workflow",
			Name:      "gate_denials_total",
			Help:      "Total number of workflow gate denials by reason code",
		},
		[]string{"reason"},
	)

	// TrancheRequestsTotal tracks disbursement tranche requests
	TrancheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "disbursement",
			Name:      "tranche_requests_total",
			Help:      "Total number of disbursement tranche requests by tranche and outcome",
		},
		[]string{"tranche", "status"},
	)

	// ContractsSignedTotal tracks contract signings
	ContractsSignedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "contract",
			Name:      "signed_total",
			Help:      "Total number of contracts signed",
		},
	)

	// OutputVerificationsTotal tracks research output verification decisions
	OutputVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "output",
			Name:      "verifications_total",
			Help:      "Total number of research output verification decisions",
		},
		[]string{"category", "status"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aster",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "aster",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aster",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordTransition records a proposal status transition
func RecordTransition(from, to string) {
	ProposalTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordGateDenial records a workflow gate denial
func RecordGateDenial(reason string) {
	GateDenialsTotal.WithLabelValues(reason).Inc()
}

// RecordTrancheRequest records a disbursement tranche request outcome
func RecordTrancheRequest(tranche, status string) {
	TrancheRequestsTotal.WithLabelValues(tranche, status).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}
