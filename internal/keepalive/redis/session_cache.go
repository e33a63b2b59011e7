package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/keepalive"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL = 2 * time.Hour
)

// SessionCache keeps handshake results so a restarted process can skip the
// session call for a token/proxy pair it has seen recently.
type SessionCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

func NewSessionCache(client *redis.Client, keyPrefix string) *SessionCache {
	if keyPrefix == "" {
		keyPrefix = "keepalive"
	}
	return &SessionCache{
		client:    client,
		ttl:       defaultTTL,
		keyPrefix: keyPrefix,
	}
}

func (c *SessionCache) WithTTL(ttl time.Duration) *SessionCache {
	c.ttl = ttl
	return c
}

func (c *SessionCache) sessionKey(id *identity.Identity) string {
	return fmt.Sprintf("%s:session:%s:%s", c.keyPrefix, identity.Fingerprint(id.Token()), id.Proxy())
}

func (c *SessionCache) Load(ctx context.Context, id *identity.Identity) (keepalive.SessionInfo, bool, error) {
	data, err := c.client.Get(ctx, c.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return keepalive.SessionInfo{}, false, nil
	}
	if err != nil {
		return keepalive.SessionInfo{}, false, fmt.Errorf("get session: %w", err)
	}

	var info keepalive.SessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return keepalive.SessionInfo{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return info, true, nil
}

func (c *SessionCache) Store(ctx context.Context, id *identity.Identity, info keepalive.SessionInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := c.client.Set(ctx, c.sessionKey(id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, id *identity.Identity) error {
	if err := c.client.Del(ctx, c.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

var _ keepalive.SessionCache = (*SessionCache)(nil)
