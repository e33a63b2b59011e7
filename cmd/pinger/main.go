package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/common/logs"
	"github.com/JulianoL13/app-proxy-keepalive/internal/common/logs/slog"
	"github.com/JulianoL13/app-proxy-keepalive/internal/common/queue"
	queueredis "github.com/JulianoL13/app-proxy-keepalive/internal/common/queue/redis"
	"github.com/JulianoL13/app-proxy-keepalive/internal/common/workerpool"
	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/keepalive"
	httpapi "github.com/JulianoL13/app-proxy-keepalive/internal/keepalive/http"
	keepaliveredis "github.com/JulianoL13/app-proxy-keepalive/internal/keepalive/redis"
	"github.com/JulianoL13/app-proxy-keepalive/internal/pool"
	"github.com/JulianoL13/app-proxy-keepalive/internal/proxylist"
	httpfetcher "github.com/JulianoL13/app-proxy-keepalive/internal/proxylist/http"
	statushttp "github.com/JulianoL13/app-proxy-keepalive/internal/status/http"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func newLogger(cfg Config) *slog.Logger {
	level := slog.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return slog.NewJSON(level)
	}
	return slog.New(level)
}

func main() {
	cfg := loadConfig()
	logger := newLogger(cfg)

	if cfg.SessionURL == "" || cfg.PingURL == "" {
		logger.Error("SESSION_URL and PING_URL are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down...")
		cancel()
	}()

	var (
		cache     keepalive.SessionCache = keepalive.NopSessionCache{}
		publisher queue.Publisher
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)

		cache = keepaliveredis.NewSessionCache(redisClient, "").WithTTL(cfg.SessionTTL)
		publisher = queueredis.NewStreamsClient(redisClient)
	}

	var refresh *proxylist.RefreshUseCase
	if cfg.ProxySourceURL != "" {
		fetcher := httpfetcher.New(cfg.ProxySourceURL, cfg.RequestTimeout)
		refresh = proxylist.NewRefreshUseCase(fetcher, cfg.ProxyFile, cfg.ProxyRefreshInterval, logger)
		if _, err := refresh.RunOnce(ctx); err != nil {
			logger.Warn("initial proxy refresh failed, using proxy file", "error", err)
		}
	}

	proxies, err := proxylist.LoadFile(cfg.ProxyFile)
	if err != nil {
		logger.Error("no proxies to run", "error", err)
		os.Exit(1)
	}
	tokens, err := proxylist.LoadTokens(cfg.TokenFile)
	if err != nil {
		logger.Error("no tokens to run", "error", err)
		os.Exit(1)
	}
	logger.Info("loaded inputs", "proxies", len(proxies), "tokens", len(tokens))

	workers, err := workerpool.New(cfg.PoolCapacity * len(tokens))
	if err != nil {
		logger.Error("failed to create worker pool", "error", err)
		os.Exit(1)
	}
	defer workers.Stop()

	transport := httpapi.New(httpapi.Config{
		SessionURL: cfg.SessionURL,
		PingURL:    cfg.PingURL,
		Origin:     cfg.Origin,
		Timeout:    cfg.RequestTimeout,
	}, logger)

	handshake := keepalive.NewHandshakeUseCase(transport, cache, logger)
	ping := keepalive.NewPingUseCase(transport, cache, keepalive.PingConfig{
		Interval:   cfg.PingInterval,
		MaxRetries: cfg.PingMaxRetries,
		Version:    cfg.Version,
	}, logger)
	runner := keepalive.NewRunIdentityUseCase(handshake, ping, transport, logger)

	schedulers := make([]*pool.Scheduler, len(tokens))
	readers := make([]statushttp.PoolReader, len(tokens))
	for i, token := range tokens {
		name := identity.Fingerprint(token)
		s := pool.NewScheduler(pool.Config{
			Name:     name,
			Token:    token,
			Capacity: cfg.PoolCapacity,
			Tick:     cfg.PoolTick,
		}, proxies, runner, workers, logger.With("pool", name))
		if publisher != nil {
			s.WithPublisher(publisher, cfg.EventsTopic)
		}
		if refresh != nil {
			refresh.AddSink(s)
		}
		schedulers[i] = s
		readers[i] = s
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, s := range schedulers {
		s := s
		g.Go(func() error { return s.Execute(gctx) })
	}
	if refresh != nil {
		g.Go(func() error { return refresh.Execute(gctx) })
	}
	if cfg.StatusPort != "" {
		g.Go(func() error { return serveStatus(gctx, cfg.StatusPort, readers, workers, logger) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("pinger error", "error", err)
		os.Exit(1)
	}
	logger.Info("pinger stopped")
}

func serveStatus(ctx context.Context, port string, pools []statushttp.PoolReader, workers statushttp.WorkerReader, logger logs.Logger) error {
	handler := statushttp.NewHandler(pools, logger).WithWorkers(workers)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      statushttp.NewRouter(handler, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("status api listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("status api shutdown error", "error", err)
	}
	return ctx.Err()
}
