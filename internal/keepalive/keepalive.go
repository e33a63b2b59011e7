package keepalive

import (
	"context"

	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type SessionInfo struct {
	UserID string `json:"uid"`
}

type PingPayload struct {
	UserID    string `json:"id"`
	BrowserID string `json:"browser_id"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version"`
}

// Transport performs the backend calls for one identity, through its proxy.
type Transport interface {
	CreateSession(ctx context.Context, id *identity.Identity) (SessionInfo, error)
	Ping(ctx context.Context, id *identity.Identity, payload PingPayload) error
	Release(id *identity.Identity)
}

type SessionCache interface {
	Load(ctx context.Context, id *identity.Identity) (SessionInfo, bool, error)
	Store(ctx context.Context, id *identity.Identity, info SessionInfo) error
	Delete(ctx context.Context, id *identity.Identity) error
}

// Outcome is what a finished identity task tells the pool.
type Outcome int

const (
	// OutcomeRetry keeps the identity active; the pool relaunches it.
	OutcomeRetry Outcome = iota
	// OutcomeRetire removes the identity and promotes a backlog proxy.
	OutcomeRetire
	// OutcomeCancelled means the pool stopped the task itself.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetry:
		return "retry"
	case OutcomeRetire:
		return "retire"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// NopSessionCache never remembers a session, so every identity handshakes.
type NopSessionCache struct{}

func (NopSessionCache) Load(context.Context, *identity.Identity) (SessionInfo, bool, error) {
	return SessionInfo{}, false, nil
}

func (NopSessionCache) Store(context.Context, *identity.Identity, SessionInfo) error { return nil }
func (NopSessionCache) Delete(context.Context, *identity.Identity) error             { return nil }

var _ SessionCache = NopSessionCache{}
