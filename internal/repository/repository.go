package repository

import (
	"context"
	"errors"

	"surftimer-api/internal/constants"

	"github.com/mattn/go-sqlite3"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
)

// Run times are persisted as integer counts of 0.0001s so comparisons in
// ranking queries are exact. Conversion is lossless for the sub-millisecond
// precision the game server reports.
const runTimeExp = -4

func runTimeToUnits(d decimal.Decimal) int64 {
	return d.Shift(-runTimeExp).IntPart()
}

func unitsToRunTime(units int64) decimal.Decimal {
	return decimal.New(units, runTimeExp)
}

func isBusy(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrBusy || serr.Code == sqlite3.ErrLocked
	}
	return false
}

func isConstraint(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}

// readRetry runs an idempotent read with bounded fibonacci backoff on
// transient busy errors. Writes go through the driver directly; an upsert
// must not be replayed without a dedup token.
func readRetry[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	b := retry.WithMaxRetries(constants.ReadRetryMax, retry.NewFibonacci(constants.ReadRetryBaseWait))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			if isBusy(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	return out, err
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.DatabaseTimeout)
}
