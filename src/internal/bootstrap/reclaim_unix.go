//go:build !windows

package bootstrap

import (
	"errors"

	"golang.org/x/sys/unix"
)

// IsAddrInUse reports whether err is an "address already in use" bind error.
func IsAddrInUse(err error) bool {
	return errors.Is(err, unix.EADDRINUSE)
}

func terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}
