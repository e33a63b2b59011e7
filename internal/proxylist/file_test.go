package proxylist_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JulianoL13/app-proxy-keepalive/internal/proxylist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Run("loads proxies", func(t *testing.T) {
		path := writeFile(t, "proxies.txt", "1.1.1.1:8080\n2.2.2.2:8080\n")

		proxies, err := proxylist.LoadFile(path)

		require.NoError(t, err)
		assert.Len(t, proxies, 2)
	})

	t.Run("empty file is an error", func(t *testing.T) {
		path := writeFile(t, "proxies.txt", "# nothing here\n\n")

		_, err := proxylist.LoadFile(path)

		assert.ErrorIs(t, err, proxylist.ErrEmptyList)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := proxylist.LoadFile(filepath.Join(t.TempDir(), "absent.txt"))

		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoadTokens(t *testing.T) {
	path := writeFile(t, "tokens.txt", "")

	_, err := proxylist.LoadTokens(path)

	assert.ErrorIs(t, err, proxylist.ErrEmptyList)
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.txt")
	want := []string{"http://1.1.1.1:8080", "socks5://2.2.2.2:1080"}

	require.NoError(t, proxylist.SaveFile(path, want))
	require.NoError(t, proxylist.SaveFile(path, want))

	got, err := proxylist.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
