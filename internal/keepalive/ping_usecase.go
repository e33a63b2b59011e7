package keepalive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
)

const (
	DefaultPingInterval = 60 * time.Second
	DefaultVersion      = "2.2.7"
)

type PingConfig struct {
	Interval   time.Duration
	MaxRetries int // 0 means never give up
	Version    string
}

type PingUseCase struct {
	transport Transport
	cache     SessionCache
	cfg       PingConfig
	logger    Logger
	now       func() time.Time
}

func NewPingUseCase(transport Transport, cache SessionCache, cfg PingConfig, logger Logger) *PingUseCase {
	if cache == nil {
		cache = NopSessionCache{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPingInterval
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	return &PingUseCase{
		transport: transport,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces time.Now, for tests.
func (uc *PingUseCase) WithClock(now func() time.Time) *PingUseCase {
	uc.now = now
	return uc
}

func (uc *PingUseCase) Interval() time.Duration {
	return uc.cfg.Interval
}

// Execute sends one heartbeat for id unless the previous one is younger than
// the interval. It returns ErrAuthRejected after logging the identity out and
// ErrRetriesExhausted once the retry ceiling is hit; other failures are
// recorded on the identity and swallowed.
func (uc *PingUseCase) Execute(ctx context.Context, id *identity.Identity) error {
	now := uc.now()
	if !id.ShouldPing(now, uc.cfg.Interval) {
		uc.logger.Debug("ping skipped, too soon", "proxy", id.Proxy())
		return nil
	}
	id.RecordPing(now)

	err := uc.transport.Ping(ctx, id, PingPayload{
		UserID:    id.UserID(),
		BrowserID: id.BrowserID(),
		Timestamp: now.Unix(),
		Version:   uc.cfg.Version,
	})

	switch {
	case err == nil:
		if err := id.MarkPingSuccess(); err != nil {
			return err
		}
		uc.logger.Debug("ping ok", "proxy", id.Proxy())
		return nil

	case ctx.Err() != nil:
		return ctx.Err()

	case errors.Is(err, ErrAuthRejected):
		uc.logger.Warn("ping rejected, logging out", "proxy", id.Proxy())
		id.ClearSession()
		if cerr := uc.cache.Delete(ctx, id); cerr != nil {
			uc.logger.Warn("session cache delete failed", "proxy", id.Proxy(), "error", cerr)
		}
		return err
	}

	retries, terr := id.MarkPingFailure()
	if terr != nil {
		return terr
	}
	uc.logger.Info("ping failed", "proxy", id.Proxy(), "retries", retries, "error", err)

	if uc.cfg.MaxRetries > 0 && retries >= uc.cfg.MaxRetries {
		return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, retries, err)
	}
	return nil
}
