// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hireline Contributors

// Package store owns the PostgreSQL connection and schema migrations for
// the account service.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry bounds.
const (
	connectBaseDelay = 250 * time.Millisecond
	connectMaxDelay  = 5 * time.Second
)

type pinger interface {
	Ping(ctx context.Context) error
	Close()
}

// Connect opens a pool to databaseURL and waits until the database answers
// a ping, retrying with capped exponential backoff for up to timeout.
func Connect(ctx context.Context, databaseURL string, timeout time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").With("operation", "parse database url").Wrap(err)
	}

	backoff := retry.WithMaxDuration(timeout,
		retry.WithCappedDuration(connectMaxDelay, retry.NewExponential(connectBaseDelay)))

	return connectWithRetry(ctx, backoff, logger, func(ctx context.Context) (*pgxpool.Pool, error) {
		return pgxpool.NewWithConfig(ctx, cfg)
	})
}

func connectWithRetry[P pinger](ctx context.Context, backoff retry.Backoff, logger *slog.Logger, open func(context.Context) (P, error)) (P, error) {
	var pool P
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		p, err := open(ctx)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			logger.WarnContext(ctx, "database not ready, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		pool = p
		return nil
	})
	if err != nil {
		var zero P
		return zero, oops.Code("DB_CONNECT_FAILED").
			With("operation", "connect to database").
			With("attempts", attempt).
			Wrap(err)
	}
	logger.InfoContext(ctx, "database connected", "attempts", attempt)
	return pool, nil
}
