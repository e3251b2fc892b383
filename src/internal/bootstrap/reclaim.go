package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/chuckhq/chuck-hq/src/internal/config"
	"github.com/chuckhq/chuck-hq/src/internal/log"
)

const defaultProcRoot = "/proc"

// ProcessReclaimer finds the process listening on a port and sends it SIGTERM.
// It looks the socket up in procfs first and falls back to an external
// command that prints one pid per line.
type ProcessReclaimer struct {
	host     string
	command  string
	procRoot string
	selfPID  int

	runCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
	signal     func(pid int) error
}

// NewProcessReclaimer creates a reclaimer. command may contain {{port}} and
// {{host}} placeholders; an empty command disables the fallback.
func NewProcessReclaimer(host, command string) *ProcessReclaimer {
	return &ProcessReclaimer{
		host:       host,
		command:    command,
		procRoot:   defaultProcRoot,
		selfPID:    os.Getpid(),
		runCommand: runCommand,
		signal:     terminate,
	}
}

// Reclaim signals every process found on port except the current one.
func (r *ProcessReclaimer) Reclaim(ctx context.Context, port int) (bool, error) {
	pids, err := r.findPIDs(ctx, port)
	if err != nil {
		return false, err
	}

	signaled := false
	for _, pid := range pids {
		if pid == r.selfPID {
			continue
		}
		if err := r.signal(pid); err != nil {
			log.Warnf("Failed to terminate process %d on port %d: %v", pid, port, err)
			continue
		}
		log.Infof("Sent SIGTERM to process %d holding port %d", pid, port)
		signaled = true
	}
	return signaled, nil
}

func (r *ProcessReclaimer) findPIDs(ctx context.Context, port int) ([]int, error) {
	inodes, err := listenInodes(r.procRoot, port)
	if err == nil {
		pids, err := socketOwners(r.procRoot, inodes)
		if err == nil && len(pids) > 0 {
			return uniquePIDs(pids), nil
		}
	} else {
		log.Debugf("procfs lookup unavailable: %v", err)
	}

	if r.command == "" {
		return nil, nil
	}
	return r.commandPIDs(ctx, port)
}

func (r *ProcessReclaimer) commandPIDs(ctx context.Context, port int) ([]int, error) {
	args := strings.Fields(r.renderCommand(port))
	if len(args) == 0 {
		return nil, nil
	}

	out, err := r.runCommand(ctx, args[0], args[1:]...)
	pids := parsePIDs(out)
	if err != nil && len(pids) == 0 {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	return uniquePIDs(pids), nil
}

func (r *ProcessReclaimer) renderCommand(port int) string {
	if !strings.Contains(r.command, "{{") {
		return r.command
	}

	t := fasttemplate.New(r.command, "{{", "}}")
	return t.ExecuteString(map[string]interface{}{
		config.RECLAIM_TMPL_PORT: strconv.Itoa(port),
		config.RECLAIM_TMPL_HOST: r.host,
	})
}

func parsePIDs(out []byte) []int {
	var pids []int
	for _, line := range strings.Split(string(out), "\n") {
		pid, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}

func uniquePIDs(pids []int) []int {
	sort.Ints(pids)
	out := pids[:0]
	for i, pid := range pids {
		if i == 0 || pid != pids[i-1] {
			out = append(out, pid)
		}
	}
	return out
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}
