package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// CleanBlock deletes every token/token_event row stamped with
// blockNumber. Contracts are never deleted (spec §3 ownership rule),
// so only the two tables that carry a block_timestamp column are
// cleaned. A relational store can do this as one statement per table
// rather than spec §4.4's 25-item chunking (that constraint targets a
// document store's batch-write limit); each statement is retried on
// failure with exponential backoff starting at 1s, giving up once 10s
// have elapsed, grounded on the teacher's reconnect backoff pattern in
// contract-data-processor/go/server/grpc_client.go.
func (s *Store) CleanBlock(ctx context.Context, blockNumber int64) error {
	tables := []string{"tokens", "token_events"}
	for _, table := range tables {
		if err := s.cleanTable(ctx, table, blockNumber); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) cleanTable(ctx context.Context, table string, blockNumber int64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxElapsedTime = 10 * time.Second

	op := func() error {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE block_timestamp = $1`, table), blockNumber)
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("postgres: clean block %s: %w", table, err)
	}
	return nil
}
