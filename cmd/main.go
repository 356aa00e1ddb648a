package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	grpcctx "github.com/dtroode/gophfriends-server/internal/api/grpc/context"
	"github.com/dtroode/gophfriends-server/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gophfriends-server/internal/api/grpc/server"
	"github.com/dtroode/gophfriends-server/internal/cache"
	"github.com/dtroode/gophfriends-server/internal/config"
	"github.com/dtroode/gophfriends-server/internal/logger"
	"github.com/dtroode/gophfriends-server/internal/model"
	"github.com/dtroode/gophfriends-server/internal/repository/memory"
	"github.com/dtroode/gophfriends-server/internal/repository/postgres"
	"github.com/dtroode/gophfriends-server/internal/server"
	"github.com/dtroode/gophfriends-server/internal/service"
	storage "github.com/dtroode/gophfriends-server/internal/storage/minio"
	"github.com/dtroode/gophfriends-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	var lg *logger.Logger
	if cfg.LogJSON {
		lg = logger.NewWithWriter(os.Stdout, cfg.LogLevel, true)
	} else {
		lg = logger.New(cfg.LogLevel)
	}

	logAppVersion()

	directory, closeDirectory, err := openDirectory(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize directory", "error", err, "driver", cfg.Database.Driver)
	}

	recCache, closeCache, err := openCache(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize recommendation cache", "error", err)
	}

	tokenVerifier := token.NewJWT(cfg.JWT.Secret, token.WithIssuer(cfg.JWT.Issuer))

	friendship := service.NewFriendship(directory, lg)
	recommendation := service.NewRecommendation(directory, recCache, lg)
	tokenService := service.NewTokenService(tokenVerifier)

	r := router.New(friendship, recommendation, tokenService, grpcctx.NewManager(), lg)
	srv := grpcServer.NewGRPCServer(r.Register(), fmt.Sprintf(":%s", cfg.GRPC.Port))

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		lg.Info("starting server", "address", s.Address(), "tls", cfg.GRPC.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			lg.Error("server stopped with error", "error", err)
			stop()
		}
	}(srv)

	<-ctx.Done()
	lg.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		lg.Error("error during server shutdown", "error", err, "address", srv.Address())
	}
	wg.Wait()

	if err := closeCache(); err != nil {
		lg.Error("failed to close recommendation cache", "error", err)
	}
	if err := closeDirectory(shutdownCtx); err != nil {
		lg.Error("failed to close directory", "error", err)
	}

	lg.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

// openDirectory returns the configured directory and a function that
// releases it. The memory directory is restored from MinIO here and written
// back on close.
func openDirectory(ctx context.Context, cfg *config.Config, lg *logger.Logger) (model.Directory, func(context.Context) error, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func(context.Context) error { return db.Close() }
		return postgres.NewDirectoryRepository(db), closeFn, nil
	}

	// config.validate guarantees snapshot storage for the memory driver.
	dir := memory.NewDirectory()
	mc, err := storage.Connect(storage.Options{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, nil, err
	}
	snapshots, err := storage.NewClient(ctx, mc, cfg.Storage.Bucket)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}

	key := cfg.Storage.SnapshotKey
	if err := dir.Load(ctx, snapshots, key); err != nil {
		return nil, nil, err
	}
	lg.Info("directory snapshot loaded", "bucket", cfg.Storage.Bucket, "key", key)

	closeFn := func(ctx context.Context) error {
		if err := dir.Flush(ctx, snapshots, key); err != nil {
			return err
		}
		lg.Info("directory snapshot written", "bucket", cfg.Storage.Bucket, "key", key)
		return nil
	}
	return dir, closeFn, nil
}

func openCache(ctx context.Context, cfg *config.Config, lg *logger.Logger) (model.RecommendationCache, func() error, error) {
	if cfg.Redis.Addr == "" {
		lg.Info("recommendation cache disabled")
		return cache.Noop{}, func() error { return nil }, nil
	}

	client, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}

	lg.Info("recommendation cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	return cache.NewRedis(client, cfg.Redis.TTL), client.Close, nil
}
