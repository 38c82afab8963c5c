//	@title			wsupload API
//	@version		1.0
//	@description	WebSocket relay that stores base64 file payloads in object storage.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Token minted with "wsclient token". Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wsupload/service/internal/auth"
	"github.com/wsupload/service/internal/config"
	"github.com/wsupload/service/internal/db"
	"github.com/wsupload/service/internal/history"
	"github.com/wsupload/service/internal/logger"
	"github.com/wsupload/service/internal/relay"
	"github.com/wsupload/service/internal/storage"

	_ "github.com/wsupload/service/docs/swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("load config")
	}
	logger.Setup(cfg.IsProduction(), cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	uploader, err := newUploader(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("object storage init failed")
	}

	deps := routerDeps{allowedOrigins: cfg.Server.AllowedOrigins}

	var recorder relay.Recorder
	if cfg.Database.URL != "" {
		pool, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("database connection failed")
		}
		defer pool.Close()

		if err := db.Migrate(cfg.Database.URL); err != nil {
			logger.Log.Fatal().Err(err).Msg("database migration failed")
		}

		// Wire dependencies: repository → service → handler
		historySvc := history.NewService(history.NewRepository(pool))
		recorder = historySvc
		deps.history = history.NewHandler(historySvc)
	} else {
		logger.Log.Info().Msg("DATABASE_URL not set, upload history disabled")
	}

	if cfg.Auth.JWTSecret != "" {
		deps.verifier = auth.NewIssuer(cfg.Auth.JWTSecret)
	} else {
		logger.Log.Warn().Msg("AUTH_JWT_SECRET not set, upload socket is unauthenticated")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	proc := relay.NewProcessor(
		storage.WithTracing(uploader),
		cfg.Server.UploadDir,
		cfg.Storage.ObjectKey,
		recorder,
		relay.NewMetrics(reg),
	)
	deps.relay = relay.NewHandler(proc, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Request contexts, and with them open sockets and uploads, end on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("env", cfg.Server.AppEnv).
			Str("bucket", uploader.Bucket()).
			Str("key", cfg.Storage.ObjectKey).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("forced shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatal().Err(err).Msg("server stopped with error")
	}
	logger.Log.Info().Msg("server stopped")
}

// newUploader builds the storage client once; it is shared by every connection.
func newUploader(ctx context.Context, cfg config.StorageConfig) (storage.Uploader, error) {
	switch cfg.Driver {
	case "minio":
		return storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:     cfg.Endpoint,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			Bucket:       cfg.Bucket,
			UseSSL:       cfg.UseSSL,
			CreateBucket: cfg.CreateBucket,
		})
	default:
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			logger.Log.Warn().Msg("AWS_ACCESS_KEY/AWS_SECRET_KEY not set, uploads are unsigned")
		}
		return storage.NewS3Storage(storage.S3Options{
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Endpoint:  cfg.Endpoint,
		}), nil
	}
}
