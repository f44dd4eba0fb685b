// Package postgres is the concrete projection/orderbook Store backed
// by PostgreSQL, grounded on the teacher's postgres-consumer sink:
// sql.Open("postgres", ...), CREATE TABLE IF NOT EXISTS schema
// bootstrap, and ON CONFLICT upserts.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Store backs both projection.Store and orderbook.Store with a single
// PostgreSQL connection pool.
type Store struct {
	db *sql.DB
}

// Open dials connStr and ensures the schema exists.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: init schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS contracts (
			address TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			standard TEXT NOT NULL,
			name TEXT,
			symbol TEXT,
			image TEXT,
			deployed_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (address, chain_id)
		);

		CREATE TABLE IF NOT EXISTS tokens (
			contract_address TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			token_id_dec TEXT NOT NULL,
			token_id_hex TEXT NOT NULL,
			current_owner TEXT,
			held_since TIMESTAMPTZ,
			last_price TEXT,
			listing_start_amount TEXT,
			listing_end_amount TEXT,
			listing_start_date TIMESTAMPTZ,
			listing_end_date TIMESTAMPTZ,
			listing_currency TEXT,
			top_bid_amount TEXT,
			top_bid_maker TEXT,
			top_bid_hash TEXT,
			quantity TEXT,
			metadata_status TEXT NOT NULL,
			metadata_uri TEXT,
			status TEXT NOT NULL,
			buy_in_progress BOOLEAN NOT NULL DEFAULT FALSE,
			minted_at TIMESTAMPTZ,
			minted_to TEXT,
			mint_tx_hash TEXT,
			block_timestamp BIGINT NOT NULL,
			updated_timestamp BIGINT NOT NULL,
			PRIMARY KEY (contract_address, chain_id, token_id_dec)
		);

		CREATE TABLE IF NOT EXISTS token_events (
			event_id TEXT NOT NULL,
			sub_event_id TEXT NOT NULL DEFAULT '',
			contract_address TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			token_id_dec TEXT,
			kind TEXT NOT NULL,
			block_timestamp BIGINT NOT NULL,
			from_address TEXT,
			to_address TEXT,
			amount TEXT,
			currency_address TEXT,
			order_hash TEXT,
			PRIMARY KEY (event_id, sub_event_id)
		);

		CREATE TABLE IF NOT EXISTS offers (
			order_hash TEXT PRIMARY KEY,
			contract_address TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			token_id_dec TEXT NOT NULL,
			offer_maker TEXT NOT NULL,
			offer_amount TEXT NOT NULL,
			currency_address TEXT,
			quantity TEXT,
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			offer_timestamp BIGINT,
			status TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders (
			order_hash TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			order_type TEXT NOT NULL,
			route_type TEXT,
			currency_address TEXT,
			currency_chain_id TEXT,
			offerer TEXT,
			token_address TEXT NOT NULL,
			token_chain_id TEXT,
			token_id_dec TEXT,
			token_id_hex TEXT,
			quantity TEXT,
			start_amount TEXT,
			end_amount TEXT,
			start_amount_eth NUMERIC,
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			broker_id TEXT,
			cancelled_order_hash TEXT,
			status TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS order_transaction_info (
			tx_hash TEXT,
			event_id TEXT NOT NULL,
			sub_event_id TEXT NOT NULL DEFAULT '',
			order_hash TEXT NOT NULL,
			ts BIGINT NOT NULL,
			kind TEXT NOT NULL,
			cancelled_reason TEXT,
			related_order_hash TEXT,
			fulfiller TEXT,
			from_address TEXT,
			to_address TEXT,
			PRIMARY KEY (event_id, sub_event_id)
		);

		CREATE TABLE IF NOT EXISTS currencies (
			contract_address TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			symbol TEXT,
			decimals INT NOT NULL DEFAULT 18,
			price_in_eth NUMERIC NOT NULL,
			price_in_usd NUMERIC,
			price_updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (contract_address, chain_id)
		);

		CREATE TABLE IF NOT EXISTS active_orders (
			order_hash TEXT PRIMARY KEY,
			token_address TEXT NOT NULL,
			chain_id TEXT NOT NULL,
			token_id_dec TEXT,
			order_type TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tokens_contract ON tokens(contract_address, chain_id);
		CREATE INDEX IF NOT EXISTS idx_tokens_owner ON tokens(current_owner);
		CREATE INDEX IF NOT EXISTS idx_tokens_metadata_status ON tokens(metadata_status);
		CREATE INDEX IF NOT EXISTS idx_token_events_block ON token_events(block_timestamp);
		CREATE INDEX IF NOT EXISTS idx_offers_token ON offers(contract_address, chain_id, token_id_dec);
		CREATE INDEX IF NOT EXISTS idx_offers_status_end_date ON offers(status, end_date);
		CREATE INDEX IF NOT EXISTS idx_order_tx_info_order ON order_transaction_info(order_hash, ts);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}
