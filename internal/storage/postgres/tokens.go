package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cairo-marketplace/indexer/internal/projection"
)

func (s *Store) UpsertToken(ctx context.Context, t projection.Token) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (
			contract_address, chain_id, token_id_dec, token_id_hex, current_owner, held_since,
			last_price, listing_start_amount, listing_end_amount, listing_start_date, listing_end_date,
			listing_currency, top_bid_amount, top_bid_maker, top_bid_hash, quantity, metadata_status,
			metadata_uri, status, buy_in_progress, minted_at, minted_to, mint_tx_hash,
			block_timestamp, updated_timestamp
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (contract_address, chain_id, token_id_dec) DO UPDATE SET
			token_id_hex = EXCLUDED.token_id_hex,
			current_owner = EXCLUDED.current_owner,
			held_since = EXCLUDED.held_since,
			last_price = EXCLUDED.last_price,
			listing_start_amount = EXCLUDED.listing_start_amount,
			listing_end_amount = EXCLUDED.listing_end_amount,
			listing_start_date = EXCLUDED.listing_start_date,
			listing_end_date = EXCLUDED.listing_end_date,
			listing_currency = EXCLUDED.listing_currency,
			top_bid_amount = EXCLUDED.top_bid_amount,
			top_bid_maker = EXCLUDED.top_bid_maker,
			top_bid_hash = EXCLUDED.top_bid_hash,
			quantity = EXCLUDED.quantity,
			metadata_status = EXCLUDED.metadata_status,
			metadata_uri = EXCLUDED.metadata_uri,
			status = EXCLUDED.status,
			buy_in_progress = EXCLUDED.buy_in_progress,
			minted_at = COALESCE(tokens.minted_at, EXCLUDED.minted_at),
			minted_to = COALESCE(tokens.minted_to, EXCLUDED.minted_to),
			mint_tx_hash = COALESCE(tokens.mint_tx_hash, EXCLUDED.mint_tx_hash),
			updated_timestamp = EXCLUDED.updated_timestamp
	`,
		t.ContractAddress, t.ChainID, t.TokenIDDec, t.TokenIDHex, t.CurrentOwner, nullTime(t.HeldSince),
		t.LastPrice, nullStr(t.ListingStartAmount), nullStr(t.ListingEndAmount), nullTime(t.ListingStartDate), nullTime(t.ListingEndDate),
		nullStr(t.ListingCurrency), t.TopBidAmount, t.TopBidMaker, t.TopBidHash, t.Quantity, string(t.MetadataStatus),
		t.MetadataURI, string(t.Status), t.BuyInProgress, nullTime(t.MintedAt), nullStr(t.MintedTo), nullStr(t.MintTxHash),
		t.BlockTimestamp, t.UpdatedTimestamp,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert token: %w", err)
	}
	return nil
}

func (s *Store) GetToken(ctx context.Context, contractAddress, chainID, tokenIDDec string) (*projection.Token, error) {
	var t projection.Token
	var heldSince, listingStart, listingEnd, mintedAt sql.NullTime
	var metadataStatus, status string
	var lastPrice, topBidAmount, mintedTo, mintTxHash sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT contract_address, chain_id, token_id_dec, token_id_hex, current_owner, held_since,
			last_price, listing_start_amount, listing_end_amount, listing_start_date, listing_end_date,
			listing_currency, top_bid_amount, top_bid_maker, top_bid_hash, quantity, metadata_status,
			metadata_uri, status, buy_in_progress, minted_at, minted_to, mint_tx_hash,
			block_timestamp, updated_timestamp
		FROM tokens WHERE contract_address = $1 AND chain_id = $2 AND token_id_dec = $3
	`, contractAddress, chainID, tokenIDDec).Scan(
		&t.ContractAddress, &t.ChainID, &t.TokenIDDec, &t.TokenIDHex, &t.CurrentOwner, &heldSince,
		&lastPrice, &t.ListingStartAmount, &t.ListingEndAmount, &listingStart, &listingEnd,
		&t.ListingCurrency, &topBidAmount, &t.TopBidMaker, &t.TopBidHash, &t.Quantity, &metadataStatus,
		&t.MetadataURI, &status, &t.BuyInProgress, &mintedAt, &mintedTo, &mintTxHash,
		&t.BlockTimestamp, &t.UpdatedTimestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get token: %w", err)
	}

	t.HeldSince = heldSince.Time
	t.ListingStartDate = listingStart.Time
	t.ListingEndDate = listingEnd.Time
	t.MetadataStatus = projection.MetadataStatus(metadataStatus)
	t.Status = projection.TokenStatus(status)
	t.MintedAt = mintedAt.Time
	t.MintedTo = mintedTo.String
	t.MintTxHash = mintTxHash.String
	if lastPrice.Valid {
		t.LastPrice = &lastPrice.String
	}
	if topBidAmount.Valid {
		t.TopBidAmount = &topBidAmount.String
	}
	return &t, nil
}

// ListToRefresh pages tokens with metadata_status = TO_REFRESH, the
// read side of the external metadata-fetcher boundary (spec §1, §5
// item 5).
func (s *Store) ListToRefresh(ctx context.Context, limit int) ([]projection.Token, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contract_address, chain_id, token_id_dec, token_id_hex, current_owner, held_since,
			last_price, listing_start_amount, listing_end_amount, listing_start_date, listing_end_date,
			listing_currency, top_bid_amount, top_bid_maker, top_bid_hash, quantity, metadata_status,
			metadata_uri, status, buy_in_progress, minted_at, minted_to, mint_tx_hash,
			block_timestamp, updated_timestamp
		FROM tokens WHERE metadata_status = 'TO_REFRESH'
		ORDER BY block_timestamp ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list to refresh: %w", err)
	}
	defer rows.Close()

	var out []projection.Token
	for rows.Next() {
		var t projection.Token
		var heldSince, listingStart, listingEnd, mintedAt sql.NullTime
		var metadataStatus, status string
		var lastPrice, topBidAmount, mintedTo, mintTxHash sql.NullString
		if err := rows.Scan(
			&t.ContractAddress, &t.ChainID, &t.TokenIDDec, &t.TokenIDHex, &t.CurrentOwner, &heldSince,
			&lastPrice, &t.ListingStartAmount, &t.ListingEndAmount, &listingStart, &listingEnd,
			&t.ListingCurrency, &topBidAmount, &t.TopBidMaker, &t.TopBidHash, &t.Quantity, &metadataStatus,
			&t.MetadataURI, &status, &t.BuyInProgress, &mintedAt, &mintedTo, &mintTxHash,
			&t.BlockTimestamp, &t.UpdatedTimestamp,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan token: %w", err)
		}
		t.HeldSince = heldSince.Time
		t.ListingStartDate = listingStart.Time
		t.ListingEndDate = listingEnd.Time
		t.MetadataStatus = projection.MetadataStatus(metadataStatus)
		t.Status = projection.TokenStatus(status)
		t.MintedAt = mintedAt.Time
		t.MintedTo = mintedTo.String
		t.MintTxHash = mintTxHash.String
		if lastPrice.Valid {
			t.LastPrice = &lastPrice.String
		}
		if topBidAmount.Valid {
			t.TopBidAmount = &topBidAmount.String
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
