package pool

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/JulianoL13/app-proxy-keepalive/internal/common/events"
	"github.com/JulianoL13/app-proxy-keepalive/internal/identity"
	"github.com/JulianoL13/app-proxy-keepalive/internal/keepalive"
)

const (
	DefaultCapacity    = 100
	DefaultTick        = 3 * time.Second
	DefaultTopicEvents = "identities:events"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type Runner interface {
	Execute(ctx context.Context, id *identity.Identity) keepalive.Outcome
}

type Executor interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

type Config struct {
	Name     string
	Token    string
	Capacity int
	Tick     time.Duration
}

type task struct {
	id      *identity.Identity
	cancel  context.CancelFunc
	running bool
}

type result struct {
	proxy   string
	id      *identity.Identity
	outcome keepalive.Outcome
}

// Scheduler keeps up to Capacity identities of one token running. Proxies
// wait in a FIFO backlog and are promoted when an active identity retires.
type Scheduler struct {
	cfg       Config
	runner    Runner
	executor  Executor
	publisher Publisher
	topic     string
	logger    Logger

	mu      sync.Mutex
	backlog []string
	seen    map[string]struct{}
	active  []string
	tasks   map[string]*task

	results chan result
	wake    chan struct{}
}

func NewScheduler(cfg Config, proxies []string, runner Runner, executor Executor, logger Logger) *Scheduler {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.Name == "" {
		cfg.Name = identity.Fingerprint(cfg.Token)
	}

	s := &Scheduler{
		cfg:      cfg,
		runner:   runner,
		executor: executor,
		logger:   logger,
		seen:     make(map[string]struct{}),
		tasks:    make(map[string]*task),
		results:  make(chan result, cfg.Capacity),
		wake:     make(chan struct{}, 1),
	}
	s.enqueue(proxies)
	return s
}

// WithPublisher enables identity lifecycle events on topic.
func (s *Scheduler) WithPublisher(p Publisher, topic string) *Scheduler {
	if topic == "" {
		topic = DefaultTopicEvents
	}
	s.publisher = p
	s.topic = topic
	return s
}

func (s *Scheduler) Name() string {
	return s.cfg.Name
}

// Execute runs the scheduling loop until ctx is done. It does not return
// when the backlog runs dry.
func (s *Scheduler) Execute(ctx context.Context) error {
	s.logger.Info("starting pool", "pool", s.cfg.Name, "capacity", s.cfg.Capacity, "backlog", len(s.Backlog()))
	defer s.stopAll()

	for {
		s.launchIdle(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("pool stopped", "pool", s.cfg.Name)
			return ctx.Err()
		case r := <-s.results:
			s.handle(ctx, r)
		case <-s.wake:
		}
		s.drain(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("pool stopped", "pool", s.cfg.Name)
			return ctx.Err()
		case <-time.After(s.cfg.Tick):
		}
	}
}

// AddProxies appends proxies never seen by this pool to the backlog and
// returns how many were added.
func (s *Scheduler) AddProxies(proxies []string) int {
	added := s.enqueue(proxies)
	if added > 0 {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	return added
}

func (s *Scheduler) enqueue(proxies []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, p := range proxies {
		if _, ok := s.seen[p]; ok {
			continue
		}
		s.seen[p] = struct{}{}
		s.backlog = append(s.backlog, p)
		added++
	}
	return added
}

func (s *Scheduler) drain(ctx context.Context) {
	for {
		select {
		case r := <-s.results:
			s.handle(ctx, r)
		default:
			return
		}
	}
}

// launchIdle tops the active set up from the backlog and starts a task for
// every active proxy that has none running.
func (s *Scheduler) launchIdle(ctx context.Context) {
	s.mu.Lock()
	var promoted []string
	for len(s.active) < s.cfg.Capacity {
		next, ok := s.promoteLocked()
		if !ok {
			break
		}
		promoted = append(promoted, next)
	}
	var idle []string
	for _, p := range s.active {
		if t, ok := s.tasks[p]; !ok || !t.running {
			idle = append(idle, p)
		}
	}
	s.mu.Unlock()

	for _, p := range promoted {
		s.announce(ctx, p)
	}
	for _, p := range idle {
		s.launch(ctx, p)
	}
}

func (s *Scheduler) handle(ctx context.Context, r result) {
	s.mu.Lock()
	t, ok := s.tasks[r.proxy]
	if !ok || t.id != r.id {
		s.mu.Unlock()
		return
	}
	t.running = false
	s.mu.Unlock()

	switch r.outcome {
	case keepalive.OutcomeRetire:
		s.retire(ctx, r.proxy, "terminal failure")
		if next, ok := s.promote(); ok {
			s.announce(ctx, next)
			s.launch(ctx, next)
		}
	case keepalive.OutcomeRetry:
		s.logger.Debug("relaunching identity", "pool", s.cfg.Name, "proxy", r.proxy)
		s.launch(ctx, r.proxy)
	case keepalive.OutcomeCancelled:
	}
}

func (s *Scheduler) launch(ctx context.Context, proxy string) {
	s.mu.Lock()
	t, ok := s.tasks[proxy]
	if !ok {
		t = &task{id: identity.New(proxy, s.cfg.Token)}
		s.tasks[proxy] = t
	}
	if t.running {
		s.mu.Unlock()
		return
	}
	if t.cancel != nil {
		t.cancel()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true
	id := t.id
	s.mu.Unlock()

	err := s.executor.Submit(taskCtx, func(jobCtx context.Context) {
		defer cancel()
		outcome := s.runner.Execute(jobCtx, id)
		select {
		case s.results <- result{proxy: proxy, id: id, outcome: outcome}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		s.logger.Warn("failed to submit identity task", "pool", s.cfg.Name, "proxy", proxy, "error", err)
		cancel()
		s.mu.Lock()
		t.running = false
		s.mu.Unlock()
	}
}

func (s *Scheduler) promote() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.active) >= s.cfg.Capacity {
		return "", false
	}
	return s.promoteLocked()
}

func (s *Scheduler) promoteLocked() (string, bool) {
	if len(s.backlog) == 0 {
		return "", false
	}
	next := s.backlog[0]
	s.backlog = s.backlog[1:]
	s.active = append(s.active, next)
	return next, true
}

func (s *Scheduler) announce(ctx context.Context, proxy string) {
	s.logger.Info("identity promoted", "pool", s.cfg.Name, "proxy", proxy)
	s.publish(ctx, events.IdentityEvent{
		Type:  events.IdentityPromoted,
		Pool:  s.cfg.Name,
		Proxy: proxy,
		At:    time.Now(),
	})
}

func (s *Scheduler) retire(ctx context.Context, proxy, reason string) {
	s.mu.Lock()
	t := s.tasks[proxy]
	delete(s.tasks, proxy)
	for i, p := range s.active {
		if p == proxy {
			s.active = append(s.active[:i:i], s.active[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	var browserID string
	if t != nil {
		browserID = t.id.BrowserID()
		if t.cancel != nil {
			t.cancel()
		}
	}

	s.logger.Info("identity retired", "pool", s.cfg.Name, "proxy", proxy, "reason", reason)
	s.publish(ctx, events.IdentityEvent{
		Type:      events.IdentityRetired,
		Pool:      s.cfg.Name,
		Proxy:     proxy,
		BrowserID: browserID,
		Reason:    reason,
		At:        time.Now(),
	})
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.cancel != nil {
			t.cancel()
		}
	}
}

func (s *Scheduler) publish(ctx context.Context, e events.IdentityEvent) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn("failed to encode event", "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, payload); err != nil {
		s.logger.Warn("failed to publish event", "type", e.Type, "proxy", e.Proxy, "error", err)
	}
}
