//go:build unix

package internal

import (
	"bytes"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// Wait reaps the process with wait4.
func (p *OSProcess) Wait(pid int) (int, error) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("wait %d: %w", pid, err)
		}
		break
	}
	if ws.Signaled() {
		return 128 + int(ws.Signal()), nil
	}
	return ws.ExitStatus(), nil
}

// Usage reports the resource usage of the current process from getrusage.
func (p *OSProcess) Usage() (Usage, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Usage{}, fmt.Errorf("getrusage: %w", err)
	}
	return Usage{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
	}, nil
}

func platformVersion() string {
	var uname unix.Utsname
	if unix.Uname(&uname) != nil {
		// If uname failed, we don't have anything else to try.
		return ""
	}
	v, r := uname.Version[:], uname.Release[:]
	return fmt.Sprintf("%s.%s", bytes.Trim(v, "\x00"), bytes.Trim(r, "\x00"))
}
