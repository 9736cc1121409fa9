//go:build linux

package sandbox

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/google/uuid"
	"github.com/nniemeir/euclid/config"
	"golang.org/x/sys/unix"
)

// cloneArgs mirrors struct clone_args from uapi/linux/sched.h, the ABI
// clone3 expects.
type cloneArgs struct {
	Flags      uint64
	Pidfd      uint64
	ChildTid   uint64
	ParentTid  uint64
	ExitSignal uint64
	Stack      uint64
	StackSize  uint64
	TLS        uint64
	SetTid     uint64
	SetTidSize uint64
	Cgroup     uint64
}

// namespaceFlags is the fixed set of namespaces Init is created in: UTS for
// hostname isolation, PID so Init becomes PID 1 of a fresh namespace, NS for
// the mount-propagation/pivot_root work, NET for an interface-less network
// namespace, IPC for SysV/POSIX IPC isolation. No NEWUSER (user-namespace
// remapping is out of scope), no NEWCGROUP/NEWTIME/PIDFD: the bring-up
// protocol manages the cgroup path explicitly rather than relying on a
// cgroup namespace, and has no use for a pidfd or a private clock.
const namespaceFlags = unix.CLONE_NEWUTS |
	unix.CLONE_NEWPID |
	unix.CLONE_NEWNS |
	unix.CLONE_NEWNET |
	unix.CLONE_NEWIPC

// SandboxProcess is a running sandbox spawned by NewSandbox.
type SandboxProcess struct {
	id  uuid.UUID
	pid int
}

// ID returns the sandbox's correlation identifier, logged by the Supervisor
// and useful for matching a log line to a leftover cgroup directory across
// repeated runs of the fixed /sys/fs/cgroup/euclid path.
func (p *SandboxProcess) ID() string {
	return p.id.String()
}

// PID returns Init's process id in the Supervisor's (host) PID namespace.
func (p *SandboxProcess) PID() int {
	return p.pid
}

/**
 * NewSandbox validates cfg, spawns Init via clone3 into the fixed namespace
 * set, then configures the cgroup and releases Init. The calling goroutine's OS thread is
 * locked for the duration of the clone so the Go scheduler cannot migrate
 * the post-clone child onto a different thread before it reaches runInit.
 */
func NewSandbox(cfg *config.SandboxConfig, env []string) (*SandboxProcess, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageError("validate", err)
	}

	if unix.Geteuid() != 0 {
		return nil, stageError("preflight", fmt.Errorf("euclid must be run as root"))
	}

	rfd, wfd, err := MakeSyncPipe()
	if err != nil {
		return nil, stageError("sync-pipe", err)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	args := cloneArgs{
		Flags:      uint64(namespaceFlags),
		ExitSignal: uint64(unix.SIGCHLD),
	}

	pid, _, errno := unix.Syscall(
		unix.SYS_CLONE3,
		uintptr(unsafe.Pointer(&args)),
		unsafe.Sizeof(args),
		0,
	)
	if errno != 0 {
		ClosePipe(rfd, wfd)
		return nil, stageError("clone3", errno)
	}

	if pid == 0 {
		runInit(rfd, cfg, env)
		// runInit never returns.
	}

	_ = unix.Close(rfd)

	process := &SandboxProcess{
		id:  uuid.New(),
		pid: int(pid),
	}

	if err := ConfigureCgroup(cfg); err != nil {
		_ = unix.Close(wfd)
		_ = reapChild(process.pid)
		return nil, stageError("cgroup-configure", err)
	}

	if err := ReleaseInit(wfd); err != nil {
		_ = reapChild(process.pid)
		return nil, stageError("release", err)
	}

	return process, nil
}

func reapChild(pid int) error {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		return err
	}
}

/**
 * Wait blocks until Init exits, then returns a structured Result describing
 * how. The cgroup directory is intentionally left behind on the filesystem
 * for post-mortem inspection; callers that want it removed should call
 * CleanupCgroup explicitly once they're done inspecting it.
 */
func (p *SandboxProcess) Wait() (Result, error) {
	if p == nil || p.pid <= 0 {
		return Result{}, fmt.Errorf("sandbox: wait: invalid process")
	}

	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(p.pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Result{}, stageError("wait", err)
		}
		if wpid == p.pid {
			break
		}
	}

	return resultFromWaitStatus(ws), nil
}
