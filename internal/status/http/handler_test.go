package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logmocks "github.com/JulianoL13/app-proxy-keepalive/internal/common/logs/mocks"
	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/pool"
	statushttp "github.com/JulianoL13/app-proxy-keepalive/internal/status/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPool struct {
	snapshot pool.Snapshot
}

func (s stubPool) Snapshot() pool.Snapshot { return s.snapshot }

func newRouter(pools ...statushttp.PoolReader) http.Handler {
	handler := statushttp.NewHandler(pools, logmocks.LoggerMock{})
	return statushttp.NewRouter(handler, logmocks.LoggerMock{})
}

func fixturePools() []statushttp.PoolReader {
	lastPing := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []statushttp.PoolReader{
		stubPool{pool.Snapshot{
			Name:     "aaa",
			Capacity: 3,
			Active:   []string{"http://1.1.1.1:80", "http://2.2.2.2:80"},
			Backlog:  []string{"http://3.3.3.3:80"},
			Identities: []identity.Snapshot{
				{Proxy: "http://1.1.1.1:80", BrowserID: "b1", State: identity.Connected, HasSession: true, LastPingAt: lastPing},
				{Proxy: "http://2.2.2.2:80", BrowserID: "b2", State: identity.Disconnected, Retries: 4, HasSession: true},
			},
		}},
		stubPool{pool.Snapshot{
			Name:     "bbb",
			Capacity: 3,
			Active:   []string{"http://4.4.4.4:80"},
			Identities: []identity.Snapshot{
				{Proxy: "http://4.4.4.4:80", BrowserID: "b4", State: identity.None},
			},
		}},
	}
}

func TestHandler_Health(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body statushttp.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Nil(t, body.Workers)
}

type stubWorkers struct{ running, capacity int }

func (s stubWorkers) Running() int { return s.running }
func (s stubWorkers) Workers() int { return s.capacity }

func TestHandler_HealthReportsWorkers(t *testing.T) {
	handler := statushttp.NewHandler(nil, logmocks.LoggerMock{}).WithWorkers(stubWorkers{running: 7, capacity: 200})
	router := statushttp.NewRouter(handler, logmocks.LoggerMock{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body statushttp.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Workers)
	assert.Equal(t, 7, body.Workers.Running)
	assert.Equal(t, 200, body.Workers.Capacity)
}

func TestHandler_GetPools(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pools", nil)
	rec := httptest.NewRecorder()

	newRouter(fixturePools()...).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result []statushttp.PoolResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 2)

	assert.Equal(t, "aaa", result[0].Pool)
	assert.Equal(t, 2, result[0].Active)
	assert.Equal(t, 1, result[0].Backlog)
	assert.Equal(t, 1, result[0].Connected)
	assert.Equal(t, 1, result[0].Disconnected)
	assert.Equal(t, 1, result[1].States["none"])
}

func TestHandler_GetIdentities(t *testing.T) {
	t.Run("lists all identities", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/identities", nil)
		rec := httptest.NewRecorder()

		newRouter(fixturePools()...).ServeHTTP(rec, req)

		var result []statushttp.IdentityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Len(t, result, 3)
		assert.Equal(t, "connected", result[0].State)
		require.NotNil(t, result[0].LastPingAt)
		assert.Nil(t, result[1].LastPingAt)
		assert.Equal(t, 4, result[1].Retries)
	})

	t.Run("filters by pool", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/identities?pool=bbb", nil)
		rec := httptest.NewRecorder()

		newRouter(fixturePools()...).ServeHTTP(rec, req)

		var result []statushttp.IdentityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Len(t, result, 1)
		assert.Equal(t, "http://4.4.4.4:80", result[0].Proxy)
	})

	t.Run("filters by state", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/identities?state=disconnected", nil)
		rec := httptest.NewRecorder()

		newRouter(fixturePools()...).ServeHTTP(rec, req)

		var result []statushttp.IdentityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Len(t, result, 1)
		assert.Equal(t, "b2", result[0].BrowserID)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/identities?state=connected&pool=bbb", nil)
		rec := httptest.NewRecorder()

		newRouter(fixturePools()...).ServeHTTP(rec, req)

		assert.JSONEq(t, "[]", rec.Body.String())
	})
}
