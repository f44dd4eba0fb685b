package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RPC_PROVIDER", "DATABASE_URL", "REDIS_URL", "CHAIN_ID",
		"FROM_BLOCK", "TO_BLOCK", "HEAD_OF_CHAIN", "INDEXER_VERSION",
		"INDEXER_IDENTIFIER", "BLOCK_RANGE", "POLL_INTERVAL_SECONDS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingRPCProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/db")

	_, err := Load()
	assert.ErrorContains(t, err, "RPC_PROVIDER")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_PROVIDER", "https://rpc.example/v1")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_PROVIDER", "https://rpc.example/v1")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "SN_MAIN", cfg.ChainID)
	assert.EqualValues(t, 0, cfg.FromBlock)
	assert.False(t, cfg.HeadOfChain)
	assert.Equal(t, "dev", cfg.IndexerVersion)
}

func TestLoad_InvalidFromBlock(t *testing.T) {
	clearEnv(t)
	t.Setenv("RPC_PROVIDER", "https://rpc.example/v1")
	t.Setenv("DATABASE_URL", "postgres://localhost/db")
	t.Setenv("FROM_BLOCK", "not-a-number")

	_, err := Load()
	assert.ErrorContains(t, err, "FROM_BLOCK")
}
