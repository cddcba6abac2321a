// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package metrics

import (
	"errors"

	"github.com/blinklabs-io/hdrcheck/blockchain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "hdrcheck"
	subsystem = "indexer"

	ResultAccepted   = "accepted"
	ResultUnverified = "unverified"
	ResultRejected   = "rejected"
	ResultDuplicate  = "duplicate"

	ReasonInvalidPoW            = "invalid_pow"
	ReasonInvalidDifficultyBits = "invalid_difficulty_bits"
	ReasonWrongChainFork        = "wrong_chain_fork"
	ReasonInsufficientAncestry  = "insufficient_ancestry"
	ReasonMisconfiguredRuleSet  = "misconfigured_rule_set"
	ReasonOrphan                = "orphan"
	ReasonOther                 = "other"
)

var (
	HeadersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "headers_processed_total",
			Help:      "Total number of headers processed",
		},
		[]string{"network", "result"},
	)

	HeadersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "headers_rejected_total",
			Help:      "Total number of rejected headers by reason",
		},
		[]string{"network", "reason"},
	)

	ValidationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "validation_duration_seconds",
			Help:      "Header validation duration in seconds",
			Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"network"},
	)

	TipHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tip_height",
			Help:      "Height of the highest accepted header",
		},
		[]string{"network"},
	)

	AverageBlockInterval = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "average_block_interval_seconds",
			Help:      "Average time between recent blocks on the best chain",
		},
		[]string{"network"},
	)
)

// RejectReason returns the metrics label for a validation error
func RejectReason(err error) string {
	switch {
	case errors.Is(err, blockchain.ErrInvalidPoW):
		return ReasonInvalidPoW
	case errors.Is(err, blockchain.ErrInvalidDifficultyBits):
		return ReasonInvalidDifficultyBits
	case errors.Is(err, blockchain.ErrWrongChainFork):
		return ReasonWrongChainFork
	case errors.Is(err, blockchain.ErrInsufficientAncestry):
		return ReasonInsufficientAncestry
	case errors.Is(err, blockchain.ErrMisconfiguredRuleSet):
		return ReasonMisconfiguredRuleSet
	default:
		return ReasonOther
	}
}
