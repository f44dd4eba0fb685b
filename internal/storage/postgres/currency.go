package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/projection"
)

// GetCurrency implements projection.Store's currency lookup (spec §4.5
// supplemented feature: start_amount_eth computation). The currencies
// table is populated out-of-band from an on-chain oracle or reference
// price feed; no such feed exists in the example corpus, so population
// is left to an operator-supplied seed/migration.
func (s *Store) GetCurrency(ctx context.Context, contractAddress, chainID string) (*projection.Currency, error) {
	var c projection.Currency
	var priceUSD sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT contract_address, chain_id, symbol, decimals, price_in_eth::text, price_in_usd::text, price_updated_at
		FROM currencies WHERE contract_address = $1 AND chain_id = $2
	`, contractAddress, chainID).Scan(&c.ContractAddress, &c.ChainID, &c.Symbol, &c.Decimals, &c.PriceInETH, &priceUSD, &c.PriceUpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get currency: %w", err)
	}
	c.PriceInUSD = priceUSD.String
	return &c, nil
}

func (s *Store) UpsertCurrency(ctx context.Context, c projection.Currency) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO currencies (contract_address, chain_id, symbol, decimals, price_in_eth, price_in_usd, price_updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (contract_address, chain_id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals,
			price_in_eth = EXCLUDED.price_in_eth,
			price_in_usd = EXCLUDED.price_in_usd,
			price_updated_at = EXCLUDED.price_updated_at
	`, c.ContractAddress, c.ChainID, c.Symbol, c.Decimals, c.PriceInETH, nullStr(c.PriceInUSD), c.PriceUpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert currency: %w", err)
	}
	return nil
}
