package core

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Backlog reports the pending-connection limit the runtime passes to listen(2).
func Backlog() int {
	data, err := os.ReadFile("/proc/sys/net/core/somaxconn")
	if err != nil {
		return unix.SOMAXCONN
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n <= 0 {
		return unix.SOMAXCONN
	}
	return n
}
