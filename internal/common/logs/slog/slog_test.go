package slog_test

import (
	"bytes"
	"encoding/json"
	logslog "log/slog"
	"testing"

	"github.com/JulianoL13/app-proxy-keepalive/internal/common/logs/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.NewWithWriter(&buf, logslog.LevelInfo, true)

	logger.With("pool", "abc123").Info("identity promoted", "proxy", "http://1.1.1.1:8080")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "identity promoted", line["msg"])
	assert.Equal(t, "abc123", line["pool"])
	assert.Equal(t, "http://1.1.1.1:8080", line["proxy"])
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.NewWithWriter(&buf, logslog.LevelWarn, false)

	logger.Debug("hidden")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logslog.LevelDebug, slog.ParseLevel("DEBUG"))
	assert.Equal(t, logslog.LevelWarn, slog.ParseLevel("warning"))
	assert.Equal(t, logslog.LevelError, slog.ParseLevel("error"))
	assert.Equal(t, logslog.LevelInfo, slog.ParseLevel(""))
}
