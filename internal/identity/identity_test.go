package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{None, Connected, true},
		{None, None, true},
		{None, Disconnected, false},
		{Connected, Connected, true},
		{Connected, Disconnected, true},
		{Connected, None, true},
		{Disconnected, Connected, true},
		{Disconnected, Disconnected, true},
		{Disconnected, None, true},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIdentity_New(t *testing.T) {
	a := New("http://1.1.1.1:8080", "token")
	b := New("http://1.1.1.1:8080", "token")

	assert.Equal(t, None, a.State())
	assert.False(t, a.HasSession())
	assert.NotEmpty(t, a.BrowserID())
	assert.NotEqual(t, a.BrowserID(), b.BrowserID())
}

func TestIdentity_PingFailureRequiresSession(t *testing.T) {
	id := New("http://1.1.1.1:8080", "token")

	_, err := id.MarkPingFailure()
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, None, id.State())
	assert.Equal(t, 0, id.Retries())
}

func TestIdentity_Lifecycle(t *testing.T) {
	id := New("http://1.1.1.1:8080", "token")

	require.NoError(t, id.StartSession("user-1"))
	assert.Equal(t, Connected, id.State())
	assert.Equal(t, "user-1", id.UserID())

	n, err := id.MarkPingFailure()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, Disconnected, id.State())

	n, err = id.MarkPingFailure()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, id.MarkPingSuccess())
	assert.Equal(t, Connected, id.State())
	assert.Equal(t, 0, id.Retries())

	id.ClearSession()
	assert.Equal(t, None, id.State())
	assert.False(t, id.HasSession())
}

func TestIdentity_ShouldPing(t *testing.T) {
	id := New("http://1.1.1.1:8080", "token")
	now := time.Now()

	assert.True(t, id.ShouldPing(now, time.Minute))

	id.RecordPing(now)
	assert.False(t, id.ShouldPing(now.Add(30*time.Second), time.Minute))
	assert.True(t, id.ShouldPing(now.Add(time.Minute), time.Minute))
}

func TestIdentity_Snapshot(t *testing.T) {
	id := New("http://1.1.1.1:8080", "token")
	require.NoError(t, id.StartSession("user-1"))
	now := time.Now()
	id.RecordPing(now)

	s := id.Snapshot()
	assert.Equal(t, "http://1.1.1.1:8080", s.Proxy)
	assert.Equal(t, Connected, s.State)
	assert.True(t, s.HasSession)
	assert.Equal(t, now, s.LastPingAt)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("token-a")

	assert.Len(t, a, 12)
	assert.Equal(t, a, Fingerprint("token-a"))
	assert.NotEqual(t, a, Fingerprint("token-b"))
	assert.NotContains(t, a, "token")
}
