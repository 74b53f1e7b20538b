//go:build unix

package executor

import (
	"os/exec"
	"syscall"
)

func signalNumber(err *exec.ExitError) int {
	if ws, ok := err.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return int(ws.Signal())
	}
	return 0
}
