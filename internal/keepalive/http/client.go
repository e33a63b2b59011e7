package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/common/logs"
	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/keepalive"
	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultAccept         = "*/*"
	defaultAcceptLanguage = "en-US,en;q=0.9"
)

type Config struct {
	SessionURL string
	PingURL    string
	Origin     string
	Timeout    time.Duration
}

// Client talks to the session and ping endpoints. Every identity gets its
// own resty client so requests leave through that identity's proxy.
type Client struct {
	cfg    Config
	logger logs.Logger

	mu      sync.Mutex
	clients map[*identity.Identity]*resty.Client
}

func New(cfg Config, logger logs.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*identity.Identity]*resty.Client),
	}
}

type apiResponse struct {
	Code *int            `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) CreateSession(ctx context.Context, id *identity.Identity) (keepalive.SessionInfo, error) {
	resp, err := c.clientFor(id).R().
		SetContext(ctx).
		SetBody(map[string]any{}).
		Post(c.cfg.SessionURL)

	body, err := decode(ctx, resp, err)
	if err != nil {
		return keepalive.SessionInfo{}, fmt.Errorf("create session: %w", err)
	}

	var info keepalive.SessionInfo
	if len(body.Data) > 0 && string(body.Data) != "null" {
		if err := json.Unmarshal(body.Data, &info); err != nil {
			return keepalive.SessionInfo{}, fmt.Errorf("create session: %w: %v", keepalive.ErrInvalidResponse, err)
		}
	}
	return info, nil
}

func (c *Client) Ping(ctx context.Context, id *identity.Identity, payload keepalive.PingPayload) error {
	resp, err := c.clientFor(id).R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.cfg.PingURL)

	body, err := decode(ctx, resp, err)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if *body.Code != 0 {
		return fmt.Errorf("ping: %w: code %d", keepalive.ErrInvalidResponse, *body.Code)
	}
	return nil
}

// Release drops the identity's client and closes its idle connections.
func (c *Client) Release(id *identity.Identity) {
	c.mu.Lock()
	rc, ok := c.clients[id]
	delete(c.clients, id)
	c.mu.Unlock()

	if ok {
		rc.GetClient().CloseIdleConnections()
	}
}

func (c *Client) clientFor(id *identity.Identity) *resty.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rc, ok := c.clients[id]; ok {
		return rc
	}

	rc := resty.New().
		SetTimeout(c.cfg.Timeout).
		SetLogger(restyLogger{c.logger}).
		SetAuthToken(id.Token()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", defaultAccept).
		SetHeader("Accept-Language", defaultAcceptLanguage)
	if c.cfg.Origin != "" {
		rc.SetHeader("Origin", c.cfg.Origin)
	}
	if id.Proxy() != "" {
		rc.SetProxy(id.Proxy())
	}

	c.clients[id] = rc
	return rc
}

// decode maps a resty result onto the keepalive error categories.
func decode(ctx context.Context, resp *resty.Response, err error) (apiResponse, error) {
	if err != nil {
		if ctx.Err() != nil {
			return apiResponse{}, ctx.Err()
		}
		return apiResponse{}, fmt.Errorf("%w: %v", keepalive.ErrConnectionLost, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusForbidden:
		return apiResponse{}, fmt.Errorf("%w: status %d", keepalive.ErrAuthRejected, status)
	case status >= http.StatusInternalServerError:
		return apiResponse{}, fmt.Errorf("%w: status %d", keepalive.ErrServerError, status)
	case status < 200 || status >= 300:
		return apiResponse{}, fmt.Errorf("%w: status %d", keepalive.ErrInvalidResponse, status)
	}

	var body apiResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return apiResponse{}, fmt.Errorf("%w: %v", keepalive.ErrInvalidResponse, err)
	}

	switch {
	case body.Code == nil:
		return apiResponse{}, fmt.Errorf("%w: missing code", keepalive.ErrInvalidResponse)
	case *body.Code == http.StatusForbidden:
		return apiResponse{}, fmt.Errorf("%w: code %d", keepalive.ErrAuthRejected, *body.Code)
	case *body.Code < 0:
		return apiResponse{}, fmt.Errorf("%w: code %d %s", keepalive.ErrInvalidResponse, *body.Code, body.Msg)
	}

	return body, nil
}

type restyLogger struct {
	logger logs.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}

var _ keepalive.Transport = (*Client)(nil)
