// Package main runs the clip rendering HTTP service with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartclips/clipper/config"
	"github.com/smartclips/clipper/internal/clips"
	"github.com/smartclips/clipper/internal/fetch"
	"github.com/smartclips/clipper/internal/middleware"
	"github.com/smartclips/clipper/internal/publish"
	"github.com/smartclips/clipper/internal/status"
	"github.com/smartclips/clipper/internal/transcode"
	"github.com/smartclips/clipper/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Metadata.TableName == "" {
		logger.Warn("DYNAMO_TABLE_NAME not set; status recording disabled")
	}

	fetcher := fetch.NewFetcher(time.Duration(cfg.Clips.SegmentFetchTimeoutSec)*time.Second, logger)
	transcoder := transcode.NewTranscoder(cfg.Clips.FfmpegPath, logger)

	// The object and metadata stores are built per invocation because their
	// credentials arrive with each request.
	newUploader := func(ctx context.Context, storeCfg publish.ObjectStoreConfig, bucket string) (clips.Uploader, error) {
		return publish.NewPublisher(ctx, storeCfg, bucket, logger)
	}
	newRecorder := func(ctx context.Context, metaCfg status.MetadataStoreConfig) (clips.StatusRecorder, error) {
		return status.NewRecorder(ctx, metaCfg, cfg.Metadata.TableName, logger)
	}

	pipeline := clips.NewPipeline(fetcher, transcoder, newUploader, newRecorder, cfg.Clips.WorkDir, cfg.Clips.Domain, logger)
	clipHandler := clips.NewHandler(pipeline, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.POST("/clips", clipHandler.Create)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
