package keepalive

import (
	"context"
	"errors"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
)

type Handshaker interface {
	Execute(ctx context.Context, id *identity.Identity) (Outcome, error)
}

type Pinger interface {
	Execute(ctx context.Context, id *identity.Identity) error
	Interval() time.Duration
}

// RunIdentityUseCase is the body of one pool task: handshake, then ping on
// the interval until something ends the session.
type RunIdentityUseCase struct {
	handshake Handshaker
	ping      Pinger
	transport Transport
	logger    Logger
}

func NewRunIdentityUseCase(handshake Handshaker, ping Pinger, transport Transport, logger Logger) *RunIdentityUseCase {
	return &RunIdentityUseCase{
		handshake: handshake,
		ping:      ping,
		transport: transport,
		logger:    logger,
	}
}

func (uc *RunIdentityUseCase) Execute(ctx context.Context, id *identity.Identity) Outcome {
	defer uc.transport.Release(id)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return OutcomeCancelled
		case <-timer.C:
		}

		if !id.HasSession() {
			outcome, err := uc.handshake.Execute(ctx, id)
			if ctx.Err() != nil {
				return OutcomeCancelled
			}
			if outcome == OutcomeRetire {
				return OutcomeRetire
			}
			if err != nil || !id.HasSession() {
				return OutcomeRetry
			}
		}

		err := uc.ping.Execute(ctx, id)
		switch {
		case ctx.Err() != nil:
			return OutcomeCancelled
		case errors.Is(err, ErrRetriesExhausted):
			uc.logger.Warn("identity exhausted ping retries", "proxy", id.Proxy(), "error", err)
			return OutcomeRetire
		case errors.Is(err, ErrAuthRejected):
			return OutcomeRetry
		case err != nil:
			uc.logger.Warn("ping error", "proxy", id.Proxy(), "error", err)
			return OutcomeRetry
		}

		timer.Reset(uc.ping.Interval())
	}
}
