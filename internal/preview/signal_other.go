//go:build !unix

package preview

import (
	"errors"
	"os"
)

const canSuspend = false

func suspendProcess(p *os.Process) error {
	return errors.New("suspending processes is not supported on this platform")
}

func resumeProcess(p *os.Process) error {
	return nil
}
