package bootstrap

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/chuckhq/chuck-hq/src/internal/errors"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

const (
	DefaultMaxAttempts  = 5
	DefaultReclaimDelay = 500 * time.Millisecond
)

// Binder opens a listener. It matches net.ListenConfig.Listen.
type Binder func(ctx context.Context, network, address string) (net.Listener, error)

// Reclaimer terminates whatever process holds a port. It reports whether a
// process was found and signaled.
type Reclaimer interface {
	Reclaim(ctx context.Context, port int) (bool, error)
}

// Options configures a Machine. Zero values fall back to the defaults.
type Options struct {
	Host         string
	BasePort     int
	MaxAttempts  int
	ReclaimDelay time.Duration

	// Reclaimer is consulted once, after the first attempt fails with
	// "address in use". Nil disables reclaiming.
	Reclaimer Reclaimer

	Bind  Binder
	Sleep func(ctx context.Context, d time.Duration) error

	// OnTransition is called synchronously on every state change.
	OnTransition func(Transition)
}

// Result describes a successful bind.
type Result struct {
	Listener net.Listener
	Port     int
	Attempts int
}

// Machine runs the bind loop.
type Machine struct {
	opts Options

	mu      sync.Mutex
	state   State
	attempt int
	port    int
}

// NewMachine creates a machine in the Idle state.
func NewMachine(opts Options) *Machine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.ReclaimDelay < 0 {
		opts.ReclaimDelay = 0
	}
	if opts.Bind == nil {
		var lc net.ListenConfig
		opts.Bind = lc.Listen
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Machine{opts: opts, state: StateIdle, port: opts.BasePort}
}

// State returns the current state, attempt number and candidate port.
func (m *Machine) State() (State, int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.attempt, m.port
}

// Run drives the machine to Bound or Failed. A Failed outcome is returned as
// a BIND_ERROR.
func (m *Machine) Run(ctx context.Context) (*Result, error) {
	if state, _, _ := m.State(); state != StateIdle {
		return nil, errors.NewInternalError("bind loop already ran", nil)
	}

	attempt, port := 1, m.opts.BasePort
	for {
		m.transition(StateBinding, attempt, port)

		address := net.JoinHostPort(m.opts.Host, strconv.Itoa(port))
		ln, err := m.opts.Bind(ctx, "tcp", address)
		if err == nil {
			m.transition(StateBound, attempt, port)
			log.Infof("Listening on %s", ln.Addr())
			return &Result{Listener: ln, Port: port, Attempts: attempt}, nil
		}

		if !IsAddrInUse(err) {
			m.transition(StateFailed, attempt, port)
			return nil, errors.NewBindError(fmt.Sprintf("cannot listen on %s", address), err)
		}

		if attempt >= m.opts.MaxAttempts {
			m.transition(StateFailed, attempt, port)
			return nil, errors.NewBindError(
				fmt.Sprintf("no free port after %d attempts (tried %d-%d)", attempt, m.opts.BasePort, port), err)
		}

		m.transition(StateRetrying, attempt, port)
		log.Warnf("Port %d is already in use (attempt %d/%d)", port, attempt, m.opts.MaxAttempts)

		if attempt == 1 && m.reclaim(ctx, port) {
			if err := m.opts.Sleep(ctx, m.opts.ReclaimDelay); err != nil {
				m.transition(StateFailed, attempt, port)
				return nil, errors.NewBindError("interrupted while waiting for reclaimed port", err)
			}
		} else {
			port++
		}
		attempt++
	}
}

// reclaim reports whether a stale process was signaled. Errors count as
// "nothing found".
func (m *Machine) reclaim(ctx context.Context, port int) bool {
	if m.opts.Reclaimer == nil {
		return false
	}

	found, err := m.opts.Reclaimer.Reclaim(ctx, port)
	if err != nil {
		log.Debugf("Could not reclaim port %d: %v", port, err)
		return false
	}
	if found {
		log.Infof("Terminated stale process on port %d, retrying in %v", port, m.opts.ReclaimDelay)
	}
	return found
}

func (m *Machine) transition(to State, attempt, port int) {
	m.mu.Lock()
	t := Transition{From: m.state, To: to, Attempt: attempt, Port: port}
	m.state, m.attempt, m.port = to, attempt, port
	m.mu.Unlock()

	log.Debugf("Bind %s -> %s (attempt %d, port %d)", t.From, t.To, attempt, port)
	if m.opts.OnTransition != nil {
		m.opts.OnTransition(t)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
