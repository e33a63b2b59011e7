package keepalive_test

import (
	"context"
	"sync"

	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/keepalive"
	"github.com/stretchr/testify/mock"
)

type transportMock struct {
	mock.Mock
}

func (m *transportMock) CreateSession(ctx context.Context, id *identity.Identity) (keepalive.SessionInfo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(keepalive.SessionInfo), args.Error(1)
}

func (m *transportMock) Ping(ctx context.Context, id *identity.Identity, payload keepalive.PingPayload) error {
	return m.Called(ctx, id, payload).Error(0)
}

func (m *transportMock) Release(id *identity.Identity) {
	m.Called(id)
}

type memoryCache struct {
	mu       sync.Mutex
	sessions map[string]keepalive.SessionInfo
	deleted  []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{sessions: make(map[string]keepalive.SessionInfo)}
}

func (c *memoryCache) Load(_ context.Context, id *identity.Identity) (keepalive.SessionInfo, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info, ok := c.sessions[id.Proxy()]
	return info, ok, nil
}

func (c *memoryCache) Store(_ context.Context, id *identity.Identity, info keepalive.SessionInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[id.Proxy()] = info
	return nil
}

func (c *memoryCache) Delete(_ context.Context, id *identity.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id.Proxy())
	c.deleted = append(c.deleted, id.Proxy())
	return nil
}

type testLogger struct{}

func (testLogger) Debug(msg string, args ...any) {}
func (testLogger) Info(msg string, args ...any)  {}
func (testLogger) Warn(msg string, args ...any)  {}
