package proxylist

import (
	"context"
	"fmt"
	"time"
)

const DefaultRefreshInterval = time.Hour

type RefreshLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type Fetcher interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Sink receives refreshed proxies; pool schedulers implement it.
type Sink interface {
	AddProxies(proxies []string) int
}

type RefreshUseCase struct {
	fetcher  Fetcher
	path     string
	interval time.Duration
	sinks    []Sink
	logger   RefreshLogger
}

func NewRefreshUseCase(fetcher Fetcher, path string, interval time.Duration, logger RefreshLogger) *RefreshUseCase {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &RefreshUseCase{
		fetcher:  fetcher,
		path:     path,
		interval: interval,
		logger:   logger,
	}
}

func (uc *RefreshUseCase) AddSink(s Sink) {
	uc.sinks = append(uc.sinks, s)
}

// RunOnce downloads the list, saves it to the proxy file and hands it to
// every sink.
func (uc *RefreshUseCase) RunOnce(ctx context.Context) ([]string, error) {
	proxies, err := uc.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch proxies: %w", err)
	}
	if len(proxies) == 0 {
		return nil, fmt.Errorf("fetch proxies: %w", ErrEmptyList)
	}

	if uc.path != "" {
		if err := SaveFile(uc.path, proxies); err != nil {
			return nil, err
		}
	}

	added := 0
	for _, s := range uc.sinks {
		added += s.AddProxies(proxies)
	}

	uc.logger.Info("proxy list refreshed", "fetched", len(proxies), "added", added)
	return proxies, nil
}

func (uc *RefreshUseCase) Interval() time.Duration {
	return uc.interval
}

func (uc *RefreshUseCase) Execute(ctx context.Context) error {
	uc.logger.Info("starting proxy refresh", "interval", uc.interval, "path", uc.path)

	ticker := time.NewTicker(uc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("proxy refresh stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := uc.RunOnce(ctx); err != nil {
				uc.logger.Warn("proxy refresh failed", "error", err)
			}
		}
	}
}
