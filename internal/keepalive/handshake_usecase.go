package keepalive

import (
	"context"
	"errors"

	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
)

type HandshakeUseCase struct {
	transport Transport
	cache     SessionCache
	logger    Logger
}

func NewHandshakeUseCase(transport Transport, cache SessionCache, logger Logger) *HandshakeUseCase {
	if cache == nil {
		cache = NopSessionCache{}
	}
	return &HandshakeUseCase{
		transport: transport,
		cache:     cache,
		logger:    logger,
	}
}

// Execute opens a session for id. It returns OutcomeRetire when the failure
// is terminal for the proxy and OutcomeRetry otherwise; on success the
// identity is Connected and the outcome is OutcomeRetry with a nil error.
func (uc *HandshakeUseCase) Execute(ctx context.Context, id *identity.Identity) (Outcome, error) {
	if info, ok, err := uc.cache.Load(ctx, id); err != nil {
		uc.logger.Warn("session cache load failed", "proxy", id.Proxy(), "error", err)
	} else if ok && info.UserID != "" {
		uc.logger.Debug("session restored from cache", "proxy", id.Proxy())
		return OutcomeRetry, id.StartSession(info.UserID)
	}

	info, err := uc.transport.CreateSession(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return OutcomeCancelled, ctx.Err()
		}
		if errors.Is(err, ErrConnectionLost) || errors.Is(err, ErrServerError) {
			uc.logger.Warn("handshake failed, retiring proxy", "proxy", id.Proxy(), "error", err)
			return OutcomeRetire, err
		}
		uc.logger.Info("handshake failed, will retry", "proxy", id.Proxy(), "error", err)
		return OutcomeRetry, err
	}

	if info.UserID == "" {
		uc.logger.Warn("session has no user id, logging out", "proxy", id.Proxy())
		uc.logout(ctx, id)
		return OutcomeRetry, ErrInvalidResponse
	}

	if err := id.StartSession(info.UserID); err != nil {
		return OutcomeRetry, err
	}

	if err := uc.cache.Store(ctx, id, info); err != nil {
		uc.logger.Warn("session cache store failed", "proxy", id.Proxy(), "error", err)
	}

	uc.logger.Info("session established", "proxy", id.Proxy(), "browser_id", id.BrowserID())
	return OutcomeRetry, nil
}

func (uc *HandshakeUseCase) logout(ctx context.Context, id *identity.Identity) {
	id.ClearSession()
	if err := uc.cache.Delete(ctx, id); err != nil {
		uc.logger.Warn("session cache delete failed", "proxy", id.Proxy(), "error", err)
	}
}
