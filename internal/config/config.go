// Package config loads the adapter runner's configuration from
// environment variables (spec §6 CLI surface), following the teacher
// repo's getEnvOrDefault pattern.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every environment-variable-driven setting the adapter
// runner, the streaming service, and their storage backends need.
type Config struct {
	RPCProvider string
	DatabaseURL string
	RedisURL    string
	ChainID     string

	FromBlock    uint64
	ToBlock      uint64 // 0 means tail the chain
	HeadOfChain  bool

	PollInterval time.Duration
	BlockRange   uint64

	CheckpointPath string

	IndexerVersion    string
	IndexerIdentifier string

	GRPCPort   string
	HealthPort string
}

// Load reads Config from the process environment, applying the same
// defaults/validation shape as the teacher's LoadConfig.
func Load() (*Config, error) {
	cfg := &Config{
		RPCProvider:       os.Getenv("RPC_PROVIDER"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		ChainID:           getEnvOrDefault("CHAIN_ID", "SN_MAIN"),
		CheckpointPath:    getEnvOrDefault("CHECKPOINT_PATH", "./state/checkpoint.txt"),
		IndexerVersion:    getEnvOrDefault("INDEXER_VERSION", "dev"),
		IndexerIdentifier: os.Getenv("INDEXER_IDENTIFIER"),
		GRPCPort:          getEnvOrDefault("GRPC_PORT", ":50061"),
		HealthPort:        getEnvOrDefault("HEALTH_PORT", "8090"),
	}

	var err error
	if cfg.FromBlock, err = getEnvUint(ctxFromBlock, "0"); err != nil {
		return nil, err
	}
	if cfg.ToBlock, err = getEnvUint(ctxToBlock, "0"); err != nil {
		return nil, err
	}
	if cfg.BlockRange, err = getEnvUint(ctxBlockRange, "100"); err != nil {
		return nil, err
	}

	pollSeconds, err := getEnvUint(ctxPollIntervalSeconds, "1")
	if err != nil {
		return nil, err
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	cfg.HeadOfChain = getEnvOrDefault("HEAD_OF_CHAIN", "false") == "true"

	if cfg.RPCProvider == "" {
		return nil, fmt.Errorf("config: RPC_PROVIDER environment variable is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

const (
	ctxFromBlock           = "FROM_BLOCK"
	ctxToBlock             = "TO_BLOCK"
	ctxBlockRange          = "BLOCK_RANGE"
	ctxPollIntervalSeconds = "POLL_INTERVAL_SECONDS"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key, defaultValue string) (uint64, error) {
	raw := getEnvOrDefault(key, defaultValue)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return n, nil
}
