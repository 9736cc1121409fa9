//go:build linux

package sandbox

import "golang.org/x/sys/unix"

// Result is the structured outcome of a sandboxed command, returned by
// SandboxProcess.Wait. Signaled and ExitCode are mutually meaningful
// depending on Signaled; SeccompKilled narrows SIGSYS to "the seccomp
// whitelist rejected a syscall" as opposed to some other cause of SIGSYS.
type Result struct {
	// ExitCode is the process's exit status when Signaled is false.
	ExitCode int

	// Signaled reports whether the process was terminated by a signal
	// rather than exiting normally.
	Signaled bool

	// Signal is the terminating signal when Signaled is true.
	Signal unix.Signal

	// SeccompKilled reports whether Signal is SIGSYS, the kernel's signature
	// for a syscall outside the installed whitelist.
	SeccompKilled bool
}

func resultFromWaitStatus(ws unix.WaitStatus) Result {
	if ws.Signaled() {
		sig := ws.Signal()
		return Result{
			Signaled:      true,
			Signal:        sig,
			SeccompKilled: sig == unix.SIGSYS,
		}
	}
	return Result{ExitCode: ws.ExitStatus()}
}
