package pool

import "github.com/JulianoL13/app-proxy-keepalive/internal/identity"

type Snapshot struct {
	Name       string
	Capacity   int
	Active     []string
	Backlog    []string
	Identities []identity.Snapshot
}

// Active returns the active proxies in promotion order.
func (s *Scheduler) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.active...)
}

func (s *Scheduler) Backlog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.backlog...)
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Name:       s.cfg.Name,
		Capacity:   s.cfg.Capacity,
		Active:     append([]string(nil), s.active...),
		Backlog:    append([]string(nil), s.backlog...),
		Identities: make([]identity.Snapshot, 0, len(s.active)),
	}
	for _, p := range s.active {
		if t, ok := s.tasks[p]; ok {
			snap.Identities = append(snap.Identities, t.id.Snapshot())
		}
	}
	return snap
}
