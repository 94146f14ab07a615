package internal

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

func platformVersion() string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\Microsoft\Windows NT\CurrentVersion`, registry.QUERY_VALUE)
	if err != nil {
		// Presumably, we aren't on Windows NT, which means GetVersion should
		// give us what we want.
		return winVerGV()
	}
	defer k.Close()
	v, _, err := k.GetStringValue("CurrentVersion")
	if err != nil {
		return winVerGV()
	}
	return v
}

func winVerGV() string {
	v, err := windows.GetVersion()
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%d.%d", v&0xff, v>>8&0xff)
}

// Wait waits for the process through its handle.
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

// Usage reports the CPU times of the current process.
func (p *OSProcess) Usage() (Usage, error) {
	var created, exited, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(windows.CurrentProcess(), &created, &exited, &kernel, &user); err != nil {
		return Usage{}, fmt.Errorf("GetProcessTimes: %w", err)
	}
	return Usage{User: filetimeDuration(user), System: filetimeDuration(kernel)}, nil
}

// filetimeDuration converts a FILETIME interval in 100ns units.
func filetimeDuration(ft windows.Filetime) time.Duration {
	return time.Duration(int64(ft.HighDateTime)<<32|int64(ft.LowDateTime)) * 100
}
