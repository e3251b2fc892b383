//go:build !windows

package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const tcpHeader = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"

// writeProc builds a fake procfs tree. links maps "pid/fd" to a link target.
func writeProc(t *testing.T, tcp, tcp6 string, links map[string]string) string {
	t.Helper()
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "net"), 0755); err != nil {
		t.Fatal(err)
	}
	if tcp != "" {
		if err := os.WriteFile(filepath.Join(root, "net", "tcp"), []byte(tcpHeader+tcp), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if tcp6 != "" {
		if err := os.WriteFile(filepath.Join(root, "net", "tcp6"), []byte(tcpHeader+tcp6), 0644); err != nil {
			t.Fatal(err)
		}
	}

	for path, target := range links {
		full := filepath.Join(root, filepath.Dir(path), "fd", filepath.Base(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(target, full); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

type signalRecorder struct {
	pids []int
	err  error
}

func (s *signalRecorder) signal(pid int) error {
	s.pids = append(s.pids, pid)
	return s.err
}

func newTestReclaimer(procRoot, command string, sig *signalRecorder) *ProcessReclaimer {
	r := NewProcessReclaimer("127.0.0.1", command)
	r.procRoot = procRoot
	r.selfPID = 999
	r.signal = sig.signal
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("command should not run")
	}
	return r
}

func TestReclaim_FromProcfs(t *testing.T) {
	// 0BB9 = 3001, 0BBA = 3002; st 0A = LISTEN, 01 = ESTABLISHED.
	tcp := "   0: 0100007F:0BB9 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 4242 1 0 100 0 0 10 0\n" +
		"   1: 0100007F:0BB9 0100007F:D431 01 00000000:00000000 00:00000000 00000000  1000        0 5555 1 0 20 4 30 10 -1\n" +
		"   2: 0100007F:0BBA 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 7777 1 0 100 0 0 10 0\n"
	tcp6 := "   0: 00000000000000000000000000000000:0BB9 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 4343 1 0 100 0 0 10 0\n"

	root := writeProc(t, tcp, tcp6, map[string]string{
		"123/3": "socket:[4242]",
		"124/7": "socket:[4343]",
		"200/0": "/dev/null",
		"201/4": "socket:[5555]",
		"300/5": "socket:[7777]",
		"999/9": "socket:[4242]",
	})

	sig := &signalRecorder{}
	found, err := newTestReclaimer(root, "", sig).Reclaim(context.Background(), 3001)
	if err != nil {
		t.Fatalf("Reclaim failed: %v", err)
	}
	if !found {
		t.Fatal("Expected a process to be reclaimed")
	}
	if diff := cmp.Diff([]int{123, 124}, sig.pids); diff != "" {
		t.Errorf("Signaled pids mismatch (-want +got):\n%s", diff)
	}
}

func TestReclaim_CommandFallback(t *testing.T) {
	sig := &signalRecorder{}
	r := newTestReclaimer(filepath.Join(t.TempDir(), "missing"), "lsof -t -i tcp:{{port}} -s TCP:LISTEN", sig)

	var gotCommand string
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotCommand = strings.Join(append([]string{name}, args...), " ")
		return []byte("789\n789\nnot-a-pid\n999\n"), nil
	}

	found, err := r.Reclaim(context.Background(), 3001)
	if err != nil {
		t.Fatalf("Reclaim failed: %v", err)
	}
	if !found {
		t.Fatal("Expected a process to be reclaimed")
	}
	if gotCommand != "lsof -t -i tcp:3001 -s TCP:LISTEN" {
		t.Errorf("Unexpected command: %q", gotCommand)
	}
	if diff := cmp.Diff([]int{789}, sig.pids); diff != "" {
		t.Errorf("Signaled pids mismatch (-want +got):\n%s", diff)
	}
}

func TestReclaim_CommandHostPlaceholder(t *testing.T) {
	r := NewProcessReclaimer("0.0.0.0", "finder --addr {{host}}:{{port}}")
	if got := r.renderCommand(8080); got != "finder --addr 0.0.0.0:8080" {
		t.Errorf("Unexpected rendered command: %q", got)
	}
}

func TestReclaim_CommandFailure(t *testing.T) {
	sig := &signalRecorder{}
	r := newTestReclaimer(filepath.Join(t.TempDir(), "missing"), "lsof -t -i tcp:{{port}}", sig)
	r.runCommand = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}

	found, err := r.Reclaim(context.Background(), 3001)
	if err == nil {
		t.Error("Expected an error from the failing command")
	}
	if found || len(sig.pids) != 0 {
		t.Errorf("Nothing should be signaled, got %v", sig.pids)
	}
}

func TestReclaim_NothingFound(t *testing.T) {
	sig := &signalRecorder{}
	root := writeProc(t, "", "", nil)

	found, err := newTestReclaimer(root, "", sig).Reclaim(context.Background(), 3001)
	if err != nil || found {
		t.Errorf("Expected nothing found, got found=%v err=%v", found, err)
	}
}

func TestReclaim_SignalFailure(t *testing.T) {
	tcp := "   0: 0100007F:0BB9 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 4242 1 0 100 0 0 10 0\n"
	root := writeProc(t, tcp, "", map[string]string{"123/3": "socket:[4242]"})

	sig := &signalRecorder{err: os.ErrPermission}
	found, err := newTestReclaimer(root, "", sig).Reclaim(context.Background(), 3001)
	if err != nil {
		t.Fatalf("Reclaim failed: %v", err)
	}
	if found {
		t.Error("A process that could not be signaled must not count as reclaimed")
	}
}

func TestLocalPort(t *testing.T) {
	tests := map[string]int{
		"0100007F:0BB9": 3001,
		"00000000000000000000000000000000:1F90": 8080,
		"garbage":       -1,
		"0100007F:ZZZZ": -1,
	}
	for column, want := range tests {
		if got := localPort(column); got != want {
			t.Errorf("localPort(%q) = %d, want %d", column, got, want)
		}
	}
}
