//go:build !unix && !windows

package internal

import (
	"fmt"
	"os"
	"runtime"
)

// Wait waits for the process through os.Process.
func (p *OSProcess) Wait(pid int) (int, error) {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("wait %d: %w", pid, err)
	}
	st, err := proc.Wait()
	if err != nil {
		return 0, fmt.Errorf("wait %d: %w", pid, err)
	}
	return st.ExitCode(), nil
}

func platformVersion() string {
	return runtime.GOOS
}

// Usage is not available on this platform.
func (p *OSProcess) Usage() (Usage, error) {
	return Usage{}, errorf(NotImplementedError, "resource usage is not available on %s", runtime.GOOS)
}
