// Package proc probes liveness of editor processes recorded in working
// state. The recorded pid is advisory: the editor is launched by us but
// owned by the user, so the only reliable signal is whether the pid
// still exists.
package proc

import (
	"os"
	"syscall"
)

// Alive reports whether a process with the given pid exists. Signal 0
// performs the existence check without delivering anything; EPERM still
// means the process is there.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}
