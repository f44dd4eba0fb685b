package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/cairo-marketplace/indexer/internal/adapter"
	"github.com/cairo-marketplace/indexer/internal/chainrpc"
	"github.com/cairo-marketplace/indexer/internal/checkpoint"
	"github.com/cairo-marketplace/indexer/internal/classifier"
	"github.com/cairo-marketplace/indexer/internal/config"
	"github.com/cairo-marketplace/indexer/internal/marketplaceevents"
	"github.com/cairo-marketplace/indexer/internal/projection"
	"github.com/cairo-marketplace/indexer/internal/projection/orderbook"
	"github.com/cairo-marketplace/indexer/internal/storage/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger = logger.With(
		zap.String("chain_id", cfg.ChainID),
		zap.String("grpc_port", cfg.GRPCPort),
		zap.String("indexer_version", cfg.IndexerVersion),
	)

	chain, err := chainrpc.New(cfg.RPCProvider)
	if err != nil {
		logger.Fatal("failed to construct chain RPC client", zap.Error(err))
	}
	defer chain.Close()

	store, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open postgres store", zap.Error(err))
	}

	eventsSvc := marketplaceevents.NewService(logger)
	publishingStore := marketplaceevents.NewPublishingStore(store, eventsSvc)

	cls := classifier.New(chain, logger)
	projEngine := projection.NewEngine(publishingStore, chain, logger)
	obEngine := orderbook.NewEngine(store, publishingStore, logger)

	proc := newIngestor(chain, cls, projEngine, obEngine, cfg.ChainID, logger)
	ckpt := checkpoint.New(cfg.CheckpointPath)
	runner := adapter.New(adapter.Config{
		PollInterval: cfg.PollInterval,
		BlockRange:   cfg.BlockRange,
		FromBlock:    cfg.FromBlock,
		ToBlock:      cfg.ToBlock,
	}, chain, proc, ckpt, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Error("adapter runner stopped", zap.Error(err))
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCPort)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("port", cfg.GRPCPort), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	marketplaceevents.RegisterServer(grpcServer, eventsSvc)

	go func() {
		healthAddr := fmt.Sprintf(":%s", cfg.HealthPort)
		logger.Info("starting health check server", zap.String("address", healthAddr))

		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "healthy",
				"version": cfg.IndexerVersion,
			})
		})
		if err := http.ListenAndServe(healthAddr, mux); err != nil {
			logger.Fatal("failed to start health check server", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	logger.Info("indexer starting", zap.String("address", lis.Addr().String()))
	if err := grpcServer.Serve(lis); err != nil {
		logger.Fatal("failed to serve", zap.Error(err))
	}
}
