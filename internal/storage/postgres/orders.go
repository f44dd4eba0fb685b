package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/projection/orderbook"
	"github.com/shopspring/decimal"
)

func (s *Store) UpsertOrder(ctx context.Context, o orderbook.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (
			order_hash, created_at, updated_at, order_type, route_type, currency_address,
			currency_chain_id, offerer, token_address, token_chain_id, token_id_dec, token_id_hex, quantity,
			start_amount, end_amount, start_amount_eth, start_date, end_date, broker_id,
			cancelled_order_hash, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (order_hash) DO UPDATE SET
			updated_at = EXCLUDED.updated_at,
			start_amount = EXCLUDED.start_amount,
			end_amount = EXCLUDED.end_amount,
			cancelled_order_hash = EXCLUDED.cancelled_order_hash,
			status = EXCLUDED.status
	`, o.OrderHash, o.CreatedAt, o.UpdatedAt, string(o.OrderType), nullStr(string(o.RouteType)), nullStr(o.CurrencyAddress),
		nullStr(o.CurrencyChainID), nullStr(o.Offerer), o.TokenAddress, nullStr(o.TokenChainID), nullStr(o.TokenIDDec), nullStr(o.TokenIDHex), nullStr(o.Quantity),
		o.StartAmount, o.EndAmount, o.StartAmountETH.String(), nullTime(o.StartDate), nullTime(o.EndDate), nullStr(o.BrokerID),
		nullStr(o.CancelledOrderHash), string(o.Status))
	if err != nil {
		return fmt.Errorf("postgres: upsert order: %w", err)
	}

	if o.Status == orderbook.StatusOpen {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO active_orders (order_hash, token_address, chain_id, token_id_dec, order_type)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (order_hash) DO NOTHING
		`, o.OrderHash, o.TokenAddress, o.TokenChainID, nullStr(o.TokenIDDec), string(o.OrderType))
		if err != nil {
			return fmt.Errorf("postgres: insert active order: %w", err)
		}
	}
	return nil
}

// RemoveActiveOrder implements the supplemented active_orders index
// removal (spec §5 item 2): drop orderHash on any terminal transition.
func (s *Store) RemoveActiveOrder(ctx context.Context, orderHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM active_orders WHERE order_hash = $1`, orderHash)
	if err != nil {
		return fmt.Errorf("postgres: remove active order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderHash string) (*orderbook.Order, error) {
	var o orderbook.Order
	var routeType, currencyAddress, currencyChainID, offerer, tokenChainID, tokenIDDec, tokenIDHex, quantity, brokerID, cancelledOrderHash sql.NullString
	var startDate, endDate sql.NullTime
	var startAmountETH, status, orderType string

	err := s.db.QueryRowContext(ctx, `
		SELECT order_hash, created_at, updated_at, order_type, route_type, currency_address,
			currency_chain_id, offerer, token_address, token_chain_id, token_id_dec, token_id_hex, quantity,
			start_amount, end_amount, start_amount_eth, start_date, end_date, broker_id,
			cancelled_order_hash, status
		FROM orders WHERE order_hash = $1
	`, orderHash).Scan(
		&o.OrderHash, &o.CreatedAt, &o.UpdatedAt, &orderType, &routeType, &currencyAddress,
		&currencyChainID, &offerer, &o.TokenAddress, &tokenChainID, &tokenIDDec, &tokenIDHex, &quantity,
		&o.StartAmount, &o.EndAmount, &startAmountETH, &startDate, &endDate, &brokerID,
		&cancelledOrderHash, &status,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get order: %w", err)
	}

	o.OrderType = orderbook.OrderType(orderType)
	o.RouteType = orderbook.RouteType(routeType.String)
	o.CurrencyAddress = currencyAddress.String
	o.CurrencyChainID = currencyChainID.String
	o.Offerer = offerer.String
	o.TokenChainID = tokenChainID.String
	o.TokenIDDec = tokenIDDec.String
	o.TokenIDHex = tokenIDHex.String
	o.Quantity = quantity.String
	o.StartDate = startDate.Time
	o.EndDate = endDate.Time
	o.BrokerID = brokerID.String
	o.CancelledOrderHash = cancelledOrderHash.String
	o.Status = orderbook.Status(status)

	if d, err := decimal.NewFromString(startAmountETH); err == nil {
		o.StartAmountETH = d
	}
	return &o, nil
}
