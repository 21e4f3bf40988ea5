//go:build !windows

package config

import (
	"errors"
	"syscall"
)

// processAlive reports whether pid refers to a running process. Signal 0
// probes for existence without delivering anything; EPERM still means the
// process exists, just owned by someone else.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}
