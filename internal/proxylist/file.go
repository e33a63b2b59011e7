package proxylist

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	proxies, err := ParseProxies(f)
	if err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}
	if len(proxies) == 0 {
		return nil, fmt.Errorf("proxy file %s: %w", path, ErrEmptyList)
	}
	return proxies, nil
}

func LoadTokens(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open token file: %w", err)
	}
	defer f.Close()

	tokens, err := ParseTokens(f)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("token file %s: %w", path, ErrEmptyList)
	}
	return tokens, nil
}

// SaveFile replaces path with proxies, one per line.
func SaveFile(path string, proxies []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".proxies-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(proxies, "\n") + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write proxies: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace proxy file: %w", err)
	}
	return nil
}
