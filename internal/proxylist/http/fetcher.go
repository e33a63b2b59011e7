package httpfetcher

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/proxylist"
	"github.com/go-resty/resty/v2"
)

// Fetcher downloads a plaintext proxy list.
type Fetcher struct {
	client *resty.Client
	url    string
}

func New(url string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: resty.New().SetTimeout(timeout),
		url:    url,
	}
}

func (f *Fetcher) Fetch(ctx context.Context) ([]string, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.url)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("bad status: %d", resp.StatusCode())
	}

	return proxylist.ParseProxies(bytes.NewReader(resp.Body()))
}

var _ proxylist.Fetcher = (*Fetcher)(nil)
