//go:build !unix

package executor

import "os/exec"

func signalNumber(err *exec.ExitError) int {
	return 0
}
