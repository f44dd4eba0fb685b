package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/projection"
)

func (s *Store) UpsertContract(ctx context.Context, c projection.Contract) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (address, chain_id, standard, name, symbol, image, deployed_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (address, chain_id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), contracts.name),
			symbol = COALESCE(NULLIF(EXCLUDED.symbol, ''), contracts.symbol),
			image = COALESCE(NULLIF(EXCLUDED.image, ''), contracts.image),
			updated_at = EXCLUDED.updated_at
	`, c.Address, c.ChainID, string(c.Standard), c.Name, c.Symbol, c.Image, c.DeployedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert contract: %w", err)
	}
	return nil
}

func (s *Store) GetContract(ctx context.Context, address, chainID string) (*projection.Contract, error) {
	var c projection.Contract
	var standard string
	err := s.db.QueryRowContext(ctx, `
		SELECT address, chain_id, standard, name, symbol, image, deployed_at, updated_at
		FROM contracts WHERE address = $1 AND chain_id = $2
	`, address, chainID).Scan(&c.Address, &c.ChainID, &standard, &c.Name, &c.Symbol, &c.Image, &c.DeployedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get contract: %w", err)
	}
	c.Standard = classifier.Standard(standard)
	return &c, nil
}
