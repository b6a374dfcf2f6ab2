package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/tusec-backend/internal/adapter/grpc"
	"github.com/simaogato/tusec-backend/internal/adapter/notify"
	"github.com/simaogato/tusec-backend/internal/adapter/repository/jsonfile"
	"github.com/simaogato/tusec-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/tusec-backend/internal/config"
	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/simaogato/tusec-backend/internal/observability"
	"github.com/simaogato/tusec-backend/internal/usecase/market"
	"github.com/simaogato/tusec-backend/internal/usecase/registry"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 5 * time.Second
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, os.Stdout, version)
		if err != nil {
			logger.Fatal("Failed to initialise tracing", zap.Error(err))
		}
		defer shutdown(context.Background())
	}

	// 2. Initialize Repositories
	stockRepo, userRepo, closeStore := openStore(ctx, cfg.Store, logger)
	defer closeStore()

	// 3. Presenters: in-process fan-out for watchers, optionally mirrored to Redis
	hub := notify.NewBroadcaster(logger)
	presenters := notify.Multi{hub}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable, publishing anyway", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		presenters = append(presenters, notify.NewRedisPublisher(rdb, cfg.Redis.Prefix, logger))
	}

	// 4. Load state and initialize services
	stocks, err := stockRepo.LoadStocks(ctx)
	if err != nil {
		logger.Fatal("Failed to load stocks", zap.Error(err))
	}
	m := market.NewMarket(stocks)

	reg := registry.NewRegistry(userRepo, m, presenters, logger)
	if err := reg.Load(ctx); err != nil {
		logger.Fatal("Failed to load users", zap.Error(err))
	}

	engine := market.NewEngine(m, stockRepo, presenters, reg, nil, logger)
	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Price engine exited", zap.Error(err))
		}
	}()

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(logger),
			grpcadapter.AuthInterceptor(cfg.GRPC.Token),
		),
		grpclib.StreamInterceptor(grpcadapter.StreamAuthInterceptor(cfg.GRPC.Token)),
	)
	grpcadapter.RegisterStockViewerServiceServer(grpcServer, grpcadapter.NewServer(m, reg, hub, logger))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		logger.Fatal("Failed to listen", zap.String("addr", cfg.GRPC.Addr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPC.Addr), zap.String("store", cfg.Store.Driver))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Fatal("Failed to serve gRPC server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("Shutting down gracefully...")
	<-engineDone
	waitForShutdown(grpcServer, logger)
}

// openStore selects the persistence driver
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (domain.StockRepository, domain.UserRepository, func()) {
	if cfg.Driver == config.DriverPostgres {
		db, err := postgres.NewDB(cfg.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Fatal("Failed to prepare database", zap.Error(err))
		}
		return postgres.NewStockRepository(db), postgres.NewUserRepository(db), func() { db.Close() }
	}

	store := jsonfile.NewStore(cfg.Dir, cfg.StockFile, cfg.UserFile, logger)
	logger.Info("Using JSON store",
		zap.String("stocks", store.StockPath()),
		zap.String("users", store.UserPath()),
	)
	return store, store, func() {}
}

// waitForShutdown stops the server, cutting open watch streams after shutdownTimeout
func waitForShutdown(grpcServer *grpclib.Server, logger *zap.Logger) {
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		grpcServer.Stop()
	}
	logger.Info("gRPC server stopped")
}
