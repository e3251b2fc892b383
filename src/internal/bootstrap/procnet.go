package bootstrap

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chuckhq/chuck-hq/src/internal/utils"
)

// tcpListen is the st column value of a listening socket in /proc/net/tcp.
const tcpListen = "0A"

// listenInodes returns the socket inodes listening on port, read from the
// tcp and tcp6 tables under procRoot.
func listenInodes(procRoot string, port int) (map[string]struct{}, error) {
	inodes := make(map[string]struct{})
	found := false

	for _, table := range []string{"tcp", "tcp6"} {
		f, err := os.Open(filepath.Join(procRoot, "net", table))
		if err != nil {
			continue
		}
		found = true

		scanner := bufio.NewScanner(f)
		scanner.Scan() // header
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 10 || fields[3] != tcpListen {
				continue
			}
			if localPort(fields[1]) != port {
				continue
			}
			if fields[9] != "0" {
				inodes[fields[9]] = struct{}{}
			}
		}
		err = scanner.Err()
		utils.CloseOrWarn(f)
		if err != nil {
			return nil, err
		}
	}

	if !found {
		return nil, fmt.Errorf("no tcp tables under %s", procRoot)
	}
	return inodes, nil
}

// localPort decodes the port of a "HEXADDR:HEXPORT" column.
func localPort(column string) int {
	idx := strings.LastIndexByte(column, ':')
	if idx < 0 {
		return -1
	}
	port, err := strconv.ParseUint(column[idx+1:], 16, 16)
	if err != nil {
		return -1
	}
	return int(port)
}

// socketOwners returns the pids holding a file descriptor on one of inodes.
// Processes that cannot be inspected are skipped.
func socketOwners(procRoot string, inodes map[string]struct{}) ([]int, error) {
	if len(inodes) == 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(procRoot)
	if err != nil {
		return nil, err
	}

	var pids []int
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 {
			continue
		}

		fdDir := filepath.Join(procRoot, entry.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}
		for _, fd := range fds {
			target, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			inode, ok := socketInode(target)
			if !ok {
				continue
			}
			if _, ok := inodes[inode]; ok {
				pids = append(pids, pid)
				break
			}
		}
	}
	return pids, nil
}

// socketInode extracts the inode from a "socket:[12345]" link target.
func socketInode(target string) (string, bool) {
	if !strings.HasPrefix(target, "socket:[") || !strings.HasSuffix(target, "]") {
		return "", false
	}
	return target[len("socket:[") : len(target)-1], true
}
