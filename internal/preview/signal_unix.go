//go:build unix

package preview

import (
	"os"
	"syscall"
)

const canSuspend = true

func suspendProcess(p *os.Process) error {
	return p.Signal(syscall.SIGSTOP)
}

func resumeProcess(p *os.Process) error {
	return p.Signal(syscall.SIGCONT)
}
