//go:build !windows

package bootstrap

import (
	"context"
	"net"
	"os"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
	"golang.org/x/sys/unix"

	"github.com/chuckhq/chuck-hq/src/internal/errors"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

func TestMain(m *testing.M) {
	log.DisableLogs()
	goleak.VerifyTestMain(m)
}

type fakeListener struct {
	port int
}

func (l *fakeListener) Accept() (net.Conn, error) { return nil, net.ErrClosed }
func (l *fakeListener) Close() error              { return nil }
func (l *fakeListener) Addr() net.Addr            { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: l.port} }

func bindErr(errno syscall.Errno) error {
	return &net.OpError{Op: "listen", Net: "tcp", Err: os.NewSyscallError("bind", errno)}
}

// fakeBinder fails a port while busy[port] > 0, decrementing it on each try.
// A negative count keeps the port busy forever.
type fakeBinder struct {
	busy  map[int]int
	fail  error
	calls []int
}

func (b *fakeBinder) Bind(ctx context.Context, network, address string) (net.Listener, error) {
	_, portStr, _ := net.SplitHostPort(address)
	port, _ := strconv.Atoi(portStr)
	b.calls = append(b.calls, port)

	if b.fail != nil {
		return nil, b.fail
	}
	if n := b.busy[port]; n != 0 {
		if n > 0 {
			b.busy[port] = n - 1
		}
		return nil, bindErr(unix.EADDRINUSE)
	}
	return &fakeListener{port: port}, nil
}

type fakeReclaimer struct {
	found bool
	err   error
	calls []int
}

func (r *fakeReclaimer) Reclaim(ctx context.Context, port int) (bool, error) {
	r.calls = append(r.calls, port)
	return r.found, r.err
}

type sleepRecorder struct {
	slept []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.slept = append(s.slept, d)
	return nil
}

func newTestMachine(binder *fakeBinder, reclaimer Reclaimer, sleeper *sleepRecorder, transitions *[]Transition) *Machine {
	return NewMachine(Options{
		BasePort:     3001,
		MaxAttempts:  5,
		ReclaimDelay: 500 * time.Millisecond,
		Reclaimer:    reclaimer,
		Bind:         binder.Bind,
		Sleep:        sleeper.Sleep,
		OnTransition: func(t Transition) { *transitions = append(*transitions, t) },
	})
}

func TestRun_ReclaimSucceeds(t *testing.T) {
	binder := &fakeBinder{busy: map[int]int{3001: 1}}
	reclaimer := &fakeReclaimer{found: true}
	sleeper := &sleepRecorder{}
	var transitions []Transition

	m := newTestMachine(binder, reclaimer, sleeper, &transitions)
	res, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Port != 3001 || res.Attempts != 2 {
		t.Errorf("Expected port 3001 on attempt 2, got port %d on attempt %d", res.Port, res.Attempts)
	}
	if diff := cmp.Diff([]int{3001, 3001}, binder.calls); diff != "" {
		t.Errorf("Bind calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3001}, reclaimer.calls); diff != "" {
		t.Errorf("Reclaim calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{500 * time.Millisecond}, sleeper.slept); diff != "" {
		t.Errorf("Sleep mismatch (-want +got):\n%s", diff)
	}

	want := []Transition{
		{From: StateIdle, To: StateBinding, Attempt: 1, Port: 3001},
		{From: StateBinding, To: StateRetrying, Attempt: 1, Port: 3001},
		{From: StateRetrying, To: StateBinding, Attempt: 2, Port: 3001},
		{From: StateBinding, To: StateBound, Attempt: 2, Port: 3001},
	}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Errorf("Transitions mismatch (-want +got):\n%s", diff)
	}

	if state, _, port := m.State(); state != StateBound || port != 3001 {
		t.Errorf("Expected bound on 3001, got %s on %d", state, port)
	}
}

func TestRun_ReclaimedPortStillBusyWalksForward(t *testing.T) {
	binder := &fakeBinder{busy: map[int]int{3001: -1}}
	reclaimer := &fakeReclaimer{found: true}
	sleeper := &sleepRecorder{}
	var transitions []Transition

	res, err := newTestMachine(binder, reclaimer, sleeper, &transitions).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Port != 3002 || res.Attempts != 3 {
		t.Errorf("Expected port 3002 on attempt 3, got port %d on attempt %d", res.Port, res.Attempts)
	}
	if diff := cmp.Diff([]int{3001, 3001, 3002}, binder.calls); diff != "" {
		t.Errorf("Bind calls mismatch (-want +got):\n%s", diff)
	}
	if len(reclaimer.calls) != 1 {
		t.Errorf("Reclaim should only run after attempt 1, ran %d times", len(reclaimer.calls))
	}
	if len(sleeper.slept) != 1 {
		t.Errorf("Expected one delay, got %v", sleeper.slept)
	}
}

func TestRun_NothingToReclaim(t *testing.T) {
	tests := []struct {
		name      string
		reclaimer Reclaimer
	}{
		{name: "no process found", reclaimer: &fakeReclaimer{found: false}},
		{name: "reclaim error", reclaimer: &fakeReclaimer{err: os.ErrPermission}},
		{name: "reclaim disabled", reclaimer: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			binder := &fakeBinder{busy: map[int]int{3001: -1}}
			sleeper := &sleepRecorder{}
			var transitions []Transition

			res, err := newTestMachine(binder, tt.reclaimer, sleeper, &transitions).Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.Port != 3002 || res.Attempts != 2 {
				t.Errorf("Expected port 3002 on attempt 2, got port %d on attempt %d", res.Port, res.Attempts)
			}
			if len(sleeper.slept) != 0 {
				t.Errorf("Expected no delay, got %v", sleeper.slept)
			}
		})
	}
}

func TestRun_AllAttemptsExhausted(t *testing.T) {
	binder := &fakeBinder{busy: map[int]int{3001: -1, 3002: -1, 3003: -1, 3004: -1, 3005: -1, 3006: -1}}
	sleeper := &sleepRecorder{}
	var transitions []Transition

	m := newTestMachine(binder, &fakeReclaimer{}, sleeper, &transitions)
	res, err := m.Run(context.Background())
	if err == nil {
		t.Fatalf("Expected failure, got listener on %d", res.Port)
	}
	if errors.CodeOf(err) != errors.ErrCodeBind {
		t.Errorf("Expected BIND_ERROR, got %v", err)
	}
	if !IsAddrInUse(err) {
		t.Errorf("Expected the cause to be address in use: %v", err)
	}

	if diff := cmp.Diff([]int{3001, 3002, 3003, 3004, 3005}, binder.calls); diff != "" {
		t.Errorf("Bind calls mismatch (-want +got):\n%s", diff)
	}
	if last := transitions[len(transitions)-1]; last.To != StateFailed || last.Attempt != 5 {
		t.Errorf("Expected final transition to failed on attempt 5, got %+v", last)
	}
}

func TestRun_OtherErrorFailsImmediately(t *testing.T) {
	binder := &fakeBinder{fail: bindErr(unix.EACCES)}
	reclaimer := &fakeReclaimer{found: true}
	sleeper := &sleepRecorder{}
	var transitions []Transition

	m := newTestMachine(binder, reclaimer, sleeper, &transitions)
	if _, err := m.Run(context.Background()); errors.CodeOf(err) != errors.ErrCodeBind {
		t.Fatalf("Expected BIND_ERROR, got %v", err)
	}

	if len(binder.calls) != 1 {
		t.Errorf("Expected a single bind attempt, got %v", binder.calls)
	}
	if len(reclaimer.calls) != 0 {
		t.Errorf("Reclaim must not run for non address-in-use errors")
	}
	want := []Transition{
		{From: StateIdle, To: StateBinding, Attempt: 1, Port: 3001},
		{From: StateBinding, To: StateFailed, Attempt: 1, Port: 3001},
	}
	if diff := cmp.Diff(want, transitions); diff != "" {
		t.Errorf("Transitions mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_OnlyOnce(t *testing.T) {
	binder := &fakeBinder{busy: map[int]int{}}
	var transitions []Transition
	m := newTestMachine(binder, nil, &sleepRecorder{}, &transitions)

	if _, err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := m.Run(context.Background()); err == nil {
		t.Error("Expected second Run to fail")
	}
}

func TestRun_CancelledDuringReclaimDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	binder := &fakeBinder{busy: map[int]int{3001: 1}}
	m := NewMachine(Options{
		BasePort:     3001,
		ReclaimDelay: time.Hour,
		Reclaimer:    &fakeReclaimer{found: true},
		Bind:         binder.Bind,
	})

	_, err := m.Run(ctx)
	if errors.CodeOf(err) != errors.ErrCodeBind {
		t.Fatalf("Expected BIND_ERROR, got %v", err)
	}
	if state, _, _ := m.State(); state != StateFailed {
		t.Errorf("Expected failed state, got %s", state)
	}
}

func TestRun_RealSocketInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer occupied.Close()
	port := occupied.Addr().(*net.TCPAddr).Port

	m := NewMachine(Options{Host: "127.0.0.1", BasePort: port, MaxAttempts: 1})
	_, err = m.Run(context.Background())
	if err == nil {
		t.Fatal("Expected bind failure on an occupied port")
	}
	if !IsAddrInUse(err) {
		t.Errorf("Expected address in use, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateIdle:     "idle",
		StateBinding:  "binding",
		StateBound:    "bound",
		StateRetrying: "retrying",
		StateFailed:   "failed",
		State(42):     "unknown",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
