// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/tomtom215/correlator/internal/logging"
)

// RetryConfig bounds retry-with-backoff. MaxRetries counts total attempts.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
}

// retry runs op until it succeeds or MaxRetries attempts were made. The wait
// before attempt n+1 is InitialDelay * 2^(n-1). The last error is returned.
func retry(ctx context.Context, cfg RetryConfig, op func(context.Context) error) error {
	tries := cfg.MaxRetries
	if tries < 1 {
		tries = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	_, err := backoff.Retry(ctx,
		func() (struct{}, error) {
			return struct{}{}, op(ctx)
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(tries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logging.Ctx(ctx).Debug().Err(err).Dur("wait", wait).Msg("Export attempt failed, retrying")
		}),
	)
	return err
}
