//go:build !unix

package core

import "syscall"

func socketControl(reuseAddr bool) func(network, address string, c syscall.RawConn) error {
	return nil
}

// Without errno classification every listen failure is reported as a bind failure.
func isBindErrno(err error) bool {
	return true
}
