//go:build !linux

package core

import "syscall"

// Backlog reports the pending-connection limit the runtime passes to listen(2).
func Backlog() int {
	return syscall.SOMAXCONN
}
