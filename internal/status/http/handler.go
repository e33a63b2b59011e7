package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/common/logs"
	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/pool"
)

// PoolReader is what the handler needs from a running scheduler.
type PoolReader interface {
	Snapshot() pool.Snapshot
}

// WorkerReader reports usage of the shared task pool.
type WorkerReader interface {
	Running() int
	Workers() int
}

type Handler struct {
	pools   []PoolReader
	workers WorkerReader
	logger  logs.Logger
}

func NewHandler(pools []PoolReader, logger logs.Logger) *Handler {
	return &Handler{
		pools:  pools,
		logger: logger,
	}
}

func (h *Handler) WithWorkers(w WorkerReader) *Handler {
	h.workers = w
	return h
}

type HealthResponse struct {
	Status  string           `json:"status"`
	Workers *WorkersResponse `json:"workers,omitempty"`
}

type WorkersResponse struct {
	Running  int `json:"running"`
	Capacity int `json:"capacity"`
}

// PoolResponse summarises one token's pool. The token itself is never exposed.
type PoolResponse struct {
	Pool         string         `json:"pool"`
	Capacity     int            `json:"capacity"`
	Active       int            `json:"active"`
	Backlog      int            `json:"backlog"`
	Connected    int            `json:"connected"`
	Disconnected int            `json:"disconnected"`
	States       map[string]int `json:"states"`
}

type IdentityResponse struct {
	Pool       string     `json:"pool"`
	Proxy      string     `json:"proxy"`
	BrowserID  string     `json:"browser_id"`
	State      string     `json:"state"`
	Retries    int        `json:"retries"`
	HasSession bool       `json:"has_session"`
	LastPingAt *time.Time `json:"last_ping_at,omitempty"`
}

func toPoolResponse(s pool.Snapshot) PoolResponse {
	resp := PoolResponse{
		Pool:     s.Name,
		Capacity: s.Capacity,
		Active:   len(s.Active),
		Backlog:  len(s.Backlog),
		States:   make(map[string]int),
	}
	for _, id := range s.Identities {
		resp.States[id.State.String()]++
		switch id.State {
		case identity.Connected:
			resp.Connected++
		case identity.Disconnected:
			resp.Disconnected++
		}
	}
	return resp
}

func toIdentityResponse(poolName string, s identity.Snapshot) IdentityResponse {
	resp := IdentityResponse{
		Pool:       poolName,
		Proxy:      s.Proxy,
		BrowserID:  s.BrowserID,
		State:      s.State.String(),
		Retries:    s.Retries,
		HasSession: s.HasSession,
	}
	if !s.LastPingAt.IsZero() {
		at := s.LastPingAt
		resp.LastPingAt = &at
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Health returns service health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.workers != nil {
		resp.Workers = &WorkersResponse{
			Running:  h.workers.Running(),
			Capacity: h.workers.Workers(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPools returns one summary per token pool
func (h *Handler) GetPools(w http.ResponseWriter, r *http.Request) {
	response := make([]PoolResponse, len(h.pools))
	for i, p := range h.pools {
		response[i] = toPoolResponse(p.Snapshot())
	}
	writeJSON(w, http.StatusOK, response)
}

// GetIdentities returns every active identity
// Query params: pool, state
func (h *Handler) GetIdentities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	poolFilter := q.Get("pool")
	stateFilter := q.Get("state")

	response := make([]IdentityResponse, 0)
	for _, p := range h.pools {
		snap := p.Snapshot()
		if poolFilter != "" && snap.Name != poolFilter {
			continue
		}
		for _, id := range snap.Identities {
			if stateFilter != "" && id.State.String() != stateFilter {
				continue
			}
			response = append(response, toIdentityResponse(snap.Name, id))
		}
	}

	if l := LoggerFromContext(r.Context()); l != nil {
		l.Debug("listed identities", "count", len(response))
	}
	writeJSON(w, http.StatusOK, response)
}
