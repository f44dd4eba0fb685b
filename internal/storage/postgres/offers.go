package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/projection"
)

func (s *Store) UpsertOffer(ctx context.Context, o projection.Offer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO offers (
			order_hash, contract_address, chain_id, token_id_dec, offer_maker, offer_amount,
			currency_address, quantity, start_date, end_date, offer_timestamp, status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (order_hash) DO UPDATE SET
			offer_amount = EXCLUDED.offer_amount,
			status = EXCLUDED.status
	`, o.OrderHash, o.ContractAddress, o.ChainID, o.TokenIDDec, o.OfferMaker, o.OfferAmount,
		nullStr(o.CurrencyAddress), nullStr(o.Quantity), nullTime(o.StartDate), nullTime(o.EndDate), o.OfferTimestamp, string(o.Status))
	if err != nil {
		return fmt.Errorf("postgres: upsert offer: %w", err)
	}
	return nil
}

func (s *Store) GetOffer(ctx context.Context, orderHash string) (*projection.Offer, error) {
	var o projection.Offer
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT order_hash, contract_address, chain_id, token_id_dec, offer_maker, offer_amount,
			currency_address, quantity, start_date, end_date, offer_timestamp, status
		FROM offers WHERE order_hash = $1
	`, orderHash).Scan(&o.OrderHash, &o.ContractAddress, &o.ChainID, &o.TokenIDDec, &o.OfferMaker, &o.OfferAmount,
		&o.CurrencyAddress, &o.Quantity, &o.StartDate, &o.EndDate, &o.OfferTimestamp, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get offer: %w", err)
	}
	o.Status = projection.OfferStatus(status)
	return &o, nil
}

func (s *Store) DeleteOffer(ctx context.Context, orderHash string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM offers WHERE order_hash = $1`, orderHash)
	if err != nil {
		return fmt.Errorf("postgres: delete offer: %w", err)
	}
	return nil
}

func (s *Store) ListActiveOffers(ctx context.Context, contractAddress, chainID, tokenIDDec string) ([]projection.Offer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT order_hash, contract_address, chain_id, token_id_dec, offer_maker, offer_amount,
			currency_address, quantity, start_date, end_date, offer_timestamp, status
		FROM offers
		WHERE contract_address = $1 AND chain_id = $2 AND token_id_dec = $3
			AND status = 'PLACED' AND end_date >= now()
	`, contractAddress, chainID, tokenIDDec)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active offers: %w", err)
	}
	defer rows.Close()

	var out []projection.Offer
	for rows.Next() {
		var o projection.Offer
		var status string
		if err := rows.Scan(&o.OrderHash, &o.ContractAddress, &o.ChainID, &o.TokenIDDec, &o.OfferMaker, &o.OfferAmount,
			&o.CurrencyAddress, &o.Quantity, &o.StartDate, &o.EndDate, &o.OfferTimestamp, &status); err != nil {
			return nil, fmt.Errorf("postgres: scan offer: %w", err)
		}
		o.Status = projection.OfferStatus(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) DeleteOffersByMaker(ctx context.Context, contractAddress, chainID, tokenIDDec, maker string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM offers WHERE contract_address = $1 AND chain_id = $2 AND token_id_dec = $3 AND offer_maker = $4
	`, contractAddress, chainID, tokenIDDec, maker)
	if err != nil {
		return fmt.Errorf("postgres: delete offers by maker: %w", err)
	}
	return nil
}
