package proxylist

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

const defaultScheme = "http"

var supportedSchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// ParseProxy normalises one proxy line to a URI. Bare host:port entries get
// the http scheme.
func ParseProxy(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrInvalidProxy
	}
	if !strings.Contains(line, "://") {
		line = defaultScheme + "://" + line
	}

	u, err := url.Parse(line)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	if !supportedSchemes[strings.ToLower(u.Scheme)] {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidProxy, u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return "", fmt.Errorf("%w: missing host or port", ErrInvalidProxy)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	return u.String(), nil
}

// ParseProxies reads newline-delimited proxies, skipping blanks, comments and
// invalid lines. Order is kept and duplicates dropped.
func ParseProxies(r io.Reader) ([]string, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(lines))
	proxies := make([]string, 0, len(lines))
	for _, line := range lines {
		p, err := ParseProxy(line)
		if err != nil {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		proxies = append(proxies, p)
	}
	return proxies, nil
}

func ParseTokens(r io.Reader) ([]string, error) {
	return readLines(r)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}
	return lines, nil
}
