package identity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidTransition = errors.New("invalid state transition")

type State int

const (
	None State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case None:
		return "none"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CanTransition reports whether from -> to is an edge of the connection
// state machine. None never goes straight to Disconnected.
func CanTransition(from, to State) bool {
	switch from {
	case None:
		return to == None || to == Connected
	case Connected, Disconnected:
		return to == None || to == Connected || to == Disconnected
	default:
		return false
	}
}

// Identity is one simulated client: a proxy and a bearer token plus the
// session state gathered while it is active. Each identity owns its state.
type Identity struct {
	proxy     string
	token     string
	browserID string

	mu         sync.RWMutex
	userID     string
	state      State
	lastPingAt time.Time
	retries    int
}

func New(proxy, token string) *Identity {
	return &Identity{
		proxy:     proxy,
		token:     token,
		browserID: uuid.NewString(),
		state:     None,
	}
}

func (i *Identity) Proxy() string     { return i.proxy }
func (i *Identity) Token() string     { return i.token }
func (i *Identity) BrowserID() string { return i.browserID }

func (i *Identity) UserID() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.userID
}

func (i *Identity) HasSession() bool {
	return i.UserID() != ""
}

func (i *Identity) State() State {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

func (i *Identity) Retries() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.retries
}

func (i *Identity) StartSession(userID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.transition(Connected); err != nil {
		return err
	}
	i.userID = userID
	return nil
}

// ClearSession logs the identity out. The next ping requires a new handshake.
func (i *Identity) ClearSession() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.userID = ""
	i.state = None
}

func (i *Identity) MarkPingSuccess() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.transition(Connected); err != nil {
		return err
	}
	i.retries = 0
	return nil
}

// MarkPingFailure returns the retry count after the failure is recorded.
func (i *Identity) MarkPingFailure() (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.transition(Disconnected); err != nil {
		return i.retries, err
	}
	i.retries++
	return i.retries, nil
}

// ShouldPing is the debounce guard: false while the last ping is younger
// than interval.
func (i *Identity) ShouldPing(now time.Time, interval time.Duration) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.lastPingAt.IsZero() {
		return true
	}
	return now.Sub(i.lastPingAt) >= interval
}

func (i *Identity) RecordPing(now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.lastPingAt = now
}

func (i *Identity) transition(to State) error {
	if !CanTransition(i.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.state, to)
	}
	i.state = to
	return nil
}

type Snapshot struct {
	Proxy      string
	BrowserID  string
	State      State
	Retries    int
	LastPingAt time.Time
	HasSession bool
}

func (i *Identity) Snapshot() Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return Snapshot{
		Proxy:      i.proxy,
		BrowserID:  i.browserID,
		State:      i.state,
		Retries:    i.retries,
		LastPingAt: i.lastPingAt,
		HasSession: i.userID != "",
	}
}
