package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/probecheck/internal/config"
	"github.com/hamed0406/probecheck/internal/harness"
	"github.com/hamed0406/probecheck/internal/httpapi"
	apimw "github.com/hamed0406/probecheck/internal/httpapi/middleware"
	"github.com/hamed0406/probecheck/internal/logging"
	"github.com/hamed0406/probecheck/internal/probeset"
	"github.com/hamed0406/probecheck/internal/transport"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	fileBase, probes, err := probeset.Resolve(cfg.ProbeFile)
	if err != nil {
		logger.Fatal("probe_file_error", zap.String("file", cfg.ProbeFile), zap.Error(err))
	}
	target := cfg.TargetBaseURL
	if fileBase != "" {
		target = fileBase
	}

	h := harness.New(transport.NewHTTPTransport(), logger, harness.Options{
		DefaultTimeout: cfg.ProbeTimeout,
		MaxDetailBytes: cfg.MaxDetailBytes,
	})
	api := httpapi.NewServer(logger, h, target, probes)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("target", target),
		zap.Int("probes", len(probes)),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}
