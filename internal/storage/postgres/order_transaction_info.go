package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/projection/orderbook"
)

func (s *Store) AppendOrderTransactionInfo(ctx context.Context, info orderbook.OrderTransactionInfo) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_transaction_info (
			tx_hash, event_id, sub_event_id, order_hash, ts, kind, cancelled_reason,
			related_order_hash, fulfiller, from_address, to_address
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (event_id, sub_event_id) DO UPDATE SET
			kind = EXCLUDED.kind,
			cancelled_reason = EXCLUDED.cancelled_reason,
			fulfiller = EXCLUDED.fulfiller
	`, nullStr(info.TxHash), info.EventID, info.SubEventID, info.OrderHash, info.Timestamp, string(info.Kind),
		nullStr(string(info.CancelledReason)), nullStr(info.RelatedOrderHash), nullStr(info.Fulfiller),
		nullStr(info.From), nullStr(info.To))
	if err != nil {
		return fmt.Errorf("postgres: append order transaction info: %w", err)
	}
	return nil
}

func (s *Store) LastTransactionInfo(ctx context.Context, orderHash string) (*orderbook.OrderTransactionInfo, error) {
	var info orderbook.OrderTransactionInfo
	var txHash, cancelledReason, relatedOrderHash, fulfiller, from, to sql.NullString
	var kind string

	err := s.db.QueryRowContext(ctx, `
		SELECT tx_hash, event_id, sub_event_id, order_hash, ts, kind, cancelled_reason,
			related_order_hash, fulfiller, from_address, to_address
		FROM order_transaction_info
		WHERE order_hash = $1
		ORDER BY ts DESC
		LIMIT 1
	`, orderHash).Scan(
		&txHash, &info.EventID, &info.SubEventID, &info.OrderHash, &info.Timestamp, &kind, &cancelledReason,
		&relatedOrderHash, &fulfiller, &from, &to,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: last transaction info: %w", err)
	}

	info.TxHash = txHash.String
	info.Kind = orderbook.TransactionEventKind(kind)
	info.CancelledReason = orderbook.CancelledReason(cancelledReason.String)
	info.RelatedOrderHash = relatedOrderHash.String
	info.Fulfiller = fulfiller.String
	info.From = from.String
	info.To = to.String
	return &info, nil
}
