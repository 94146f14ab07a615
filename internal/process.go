package internal

import (
	"os"
	"os/exec"
	"strings"
	"time"
)

// Process is the operating system collaborator behind sleep, spawn, and exit.
type Process interface {
	// Sleep suspends the calling goroutine.
	Sleep(d time.Duration)
	// Spawn starts a command without waiting for it and returns its process
	// ID. A single element is a shell command line.
	Spawn(argv []string) (int, error)
	// Wait waits for a spawned process to end and returns its exit status.
	Wait(pid int) (int, error)
	// Pid returns the ID of the current process.
	Pid() int
	// Usage reports the CPU time used by the current process.
	Usage() (Usage, error)
	// Exit ends the current process. Implementations used in tests may
	// return instead.
	Exit(status int)
}

// Usage is CPU time consumed by a process.
type Usage struct {
	User   time.Duration
	System time.Duration
}

// OSProcess is the default Process, backed by the host operating system.
type OSProcess struct {
	// Shell runs single-argument commands that need a shell.
	Shell string
}

// Sleep calls time.Sleep.
func (p *OSProcess) Sleep(d time.Duration) {
	time.Sleep(d)
}

// shellMeta holds the characters that make a command line need a shell.
const shellMeta = "*?{}[]<>()~&|\\$;'`\"\n#= %"

// Spawn starts argv with the standard streams of the current process. A
// single argument containing shell metacharacters is run by the shell.
func (p *OSProcess) Spawn(argv []string) (int, error) {
	if len(argv) == 1 && strings.ContainsAny(argv[0], shellMeta) {
		argv = []string{p.Shell, "-c", argv[0]}
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	return cmd.Process.Pid, nil
}

// Pid returns os.Getpid().
func (p *OSProcess) Pid() int {
	return os.Getpid()
}

// Exit calls os.Exit.
func (p *OSProcess) Exit(status int) {
	os.Exit(status)
}

func (vm *VM) initProcess() {
	vm.defineModule("Process", nil)
	vm.ClassObject(vm.CoreClass("Process")).SingletonClass().DefineMethods(Methods{
		"pid":              ProcessPid,
		"platform_version": ProcessPlatformVersion,
		"times":            ProcessTimes,
		"wait":             ProcessWait,
	})
	vm.defineClass("Process::Tms", vm.ObjectClass, Methods{
		"stime": TmsStime,
		"utime": TmsUtime,
	})
}

// ProcessPid is a Process module method.
//
// pid returns the ID of the current process.
func ProcessPid(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewInteger(int64(vm.Process.Pid())), nil
}

// ProcessWait is a Process module method.
//
// wait waits for a spawned process to end and returns its exit status.
func ProcessWait(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	if err := vm.ArgCount(args, 1, 1); err != nil {
		return nil, err
	}
	pid, err := vm.IntegerArgAt(args, 0)
	if err != nil {
		return nil, err
	}
	vm.Log.Debugf("wait %d", pid)
	status, err := vm.Process.Wait(int(pid))
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	return vm.NewInteger(int64(status)), nil
}

// ProcessPlatformVersion is a Process module method.
//
// platform_version returns the version of the host operating system, or an
// empty string if it is unknown.
func ProcessPlatformVersion(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return vm.NewString(platformVersion()), nil
}

// ProcessTimes is a Process module method.
//
// times returns a Process::Tms holding the user and system CPU time of the
// current process in seconds.
func ProcessTimes(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	u, err := vm.Process.Usage()
	if err != nil {
		return nil, vm.RaiseError(err)
	}
	r := vm.NewObject(vm.CoreClass("Process::Tms"))
	r.SetInstanceVariable("@utime", vm.NewFloat(u.User.Seconds()))
	r.SetInstanceVariable("@stime", vm.NewFloat(u.System.Seconds()))
	return r.Freeze(), nil
}

// TmsUtime is a Process::Tms method.
//
// utime returns the user CPU time in seconds.
func TmsUtime(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return tmsField(vm, self, "@utime"), nil
}

// TmsStime is a Process::Tms method.
//
// stime returns the system CPU time in seconds.
func TmsStime(vm *VM, self *Object, args []*Object, blk Block) (*Object, error) {
	return tmsField(vm, self, "@stime"), nil
}

func tmsField(vm *VM, self *Object, name string) *Object {
	if v, ok := self.InstanceVariable(name); ok {
		return v
	}
	return vm.NewFloat(0)
}
