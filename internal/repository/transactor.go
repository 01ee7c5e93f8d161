package repository

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const maxTxAttempts = 3

type pgTransactor struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTransactor returns a Transactor backed by a pgx pool. Transactions that
// abort on serialization failures or deadlocks are retried with backoff.
func NewTransactor(pool *pgxpool.Pool, logger *zap.Logger) Transactor {
	return &pgTransactor{pool: pool, logger: logger}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := pgx.BeginTxFunc(ctx, t.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
			return fn(NewRepositories(tx))
		})
		if err != nil && !isRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(maxTxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			t.logger.Warn("retrying transaction", zap.Error(err), zap.Duration("backoff", next))
		}),
	)
	return err
}
