//go:build windows

package config

import "os"

// processAlive reports whether pid refers to a running process. FindProcess
// opens a real handle on Windows, so it fails for exited PIDs. Best effort:
// PIDs can be recycled between registry writes.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	p.Release()
	return true
}
