// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/metrics"
)

// Breaker state names reported by State.
const (
	StateClosed   = "closed"
	StateHalfOpen = "half-open"
	StateOpen     = "open"
	StateDisabled = "disabled"
)

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	Enabled          bool
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
}

// Breaker gates calls to one backend.
//
// The breaker uses real time (via sony/gobreaker) for its recovery timeout.
// Tests use short timeouts rather than an injected clock.
type Breaker struct {
	name    string
	enabled bool
	cb      *gobreaker.TwoStepCircuitBreaker[any]
}

// NewBreaker creates a breaker named after its backend.
func NewBreaker(name string, cfg BreakerConfig) *Breaker {
	b := &Breaker{name: name, enabled: cfg.Enabled}
	if !cfg.Enabled {
		return b
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	b.cb = gobreaker.NewTwoStepCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Warn().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Circuit breaker state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})
	return b
}

// Allow reports whether a call may proceed. When ok is true the caller must
// invoke done exactly once with the call's error; nil counts as a success.
func (b *Breaker) Allow() (done func(err error), ok bool) {
	if !b.enabled {
		return func(error) {}, true
	}
	// gobreaker only refuses with ErrOpenState or ErrTooManyRequests.
	done, err := b.cb.Allow()
	if err != nil {
		return nil, false
	}
	return done, true
}

// Name returns the backend name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state name.
func (b *Breaker) State() string {
	if !b.enabled {
		return StateDisabled
	}
	return stateToString(b.cb.State())
}

// Failures returns the consecutive failures since the last success.
func (b *Breaker) Failures() uint32 {
	if !b.enabled {
		return 0
	}
	return b.cb.Counts().ConsecutiveFailures
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return StateClosed
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	case gobreaker.StateOpen:
		return StateOpen
	default:
		return "unknown"
	}
}
