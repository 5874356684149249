package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"goban/internal/adapters"
	"goban/internal/bootstrap"
	gameDelivery "goban/internal/delivery/game"
	ownMiddleware "goban/internal/middleware"
	repo "goban/internal/repository"
	gameuc "goban/internal/usecase/game"
)

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		NewLogger("info").Fatalw("Failed to setup configuration", "error", err)
	}
	logger := NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	gameUC, closeStores := initGameUseCase(ctx, logger, *cfg)
	defer closeStores()

	r := chi.NewRouter()
	Router(r, cfg.IsLocalCors, gameDelivery.NewGameHandler(*cfg, logger, gameUC))

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	go serveGrpc(logger, grpcServer, ":"+cfg.GrpcPort)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	server := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}
	go func() {
		<-ctx.Done()
		healthServer.Shutdown()
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = server.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
	}()

	logger.Infof("Server is running on port %s", cfg.ServerPort)
	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("Failed to start server", "error", err)
	}
}

func NewLogger(level string) *zap.SugaredLogger {
	zapCfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zapCfg.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func Router(r *chi.Mux, isLocalCors bool, game *gameDelivery.GameHandler) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	game.Routes(r)
}

// initGameUseCase wires the configured storage. The returned func closes it.
func initGameUseCase(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) (*gameuc.GameUseCase, func()) {
	if cfg.Storage == bootstrap.StorageMemory {
		log.Info("using in-memory storage")
		store := repo.NewMemoryStore()
		return gameuc.NewGameUseCase(cfg, log, store, store), func() {}
	}

	databaseAdapters := initDatabaseAdapters(ctx, log, cfg)
	store := repo.NewGameRepository(log, databaseAdapters.mongoAdapter.Database)
	cache := repo.NewSgfCache(databaseAdapters.redisAdapter.GetClient(), cfg.SgfCacheTTL)
	return gameuc.NewGameUseCase(cfg, log, store, cache), func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = databaseAdapters.mongoAdapter.Close(closeCtx)
		_ = databaseAdapters.redisAdapter.Close(closeCtx)
	}
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(&cfg, log)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize MongoDB", "error", err)
	}

	redisAdapter := adapters.NewAdapterRedis(&cfg, log)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatalw("Failed to initialize Redis", "error", err)
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func serveGrpc(log *zap.SugaredLogger, server *grpc.Server, addr string) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Errorf("grpc health listener on %s: %v", addr, err)
		return
	}
	log.Infof("grpc health service on %s", addr)
	if err = server.Serve(lis); err != nil {
		log.Errorf("grpc health service stopped: %v", err)
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
}
