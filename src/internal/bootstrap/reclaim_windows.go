//go:build windows

package bootstrap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// IsAddrInUse reports whether err is an "address already in use" bind error.
func IsAddrInUse(err error) bool {
	return errors.Is(err, windows.WSAEADDRINUSE)
}

func terminate(pid int) error {
	return fmt.Errorf("terminating process %d is not supported on windows", pid)
}
