package postgres

import (
	"context"
	"fmt"

	"github.com/cairo-marketplace/indexer/internal/projection"
)

func (s *Store) AppendTokenEvent(ctx context.Context, e projection.TokenEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_events (
			event_id, sub_event_id, contract_address, chain_id, token_id_dec, kind,
			block_timestamp, from_address, to_address, amount, currency_address, order_hash
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (event_id, sub_event_id) DO UPDATE SET
			contract_address = EXCLUDED.contract_address,
			chain_id = EXCLUDED.chain_id,
			token_id_dec = EXCLUDED.token_id_dec,
			kind = EXCLUDED.kind,
			block_timestamp = EXCLUDED.block_timestamp,
			from_address = EXCLUDED.from_address,
			to_address = EXCLUDED.to_address,
			amount = EXCLUDED.amount,
			currency_address = EXCLUDED.currency_address,
			order_hash = EXCLUDED.order_hash
	`, e.EventID, e.SubEventID, e.ContractAddress, e.ChainID, nullStr(e.TokenIDDec), string(e.Kind),
		e.BlockTimestamp, nullStr(e.From), nullStr(e.To), e.Amount, nullStr(e.CurrencyAddress), nullStr(e.OrderHash))
	if err != nil {
		return fmt.Errorf("postgres: append token event: %w", err)
	}
	return nil
}
