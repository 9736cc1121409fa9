//go:build linux

package sandbox

import (
	"fmt"
	"os"

	"github.com/nniemeir/euclid/config"
	"golang.org/x/sys/unix"
)

/**
 * runInit is the entry point of the PID-1-of-the-new-namespace branch
 * returned by clone3 in NewSandbox. It never returns on success: the final
 * step is unix.Exec. On failure it writes nothing to the sync pipe (already
 * consumed by WaitForSupervisor), writes a diagnostic to standard error, and
 * exits with a distinct non-zero status per step.
 *
 * Every step after WaitForSupervisor uses only golang.org/x/sys/unix raw
 * calls: Go's runtime cannot safely run heap-allocation-heavy code between
 * clone3 and execve in the child of a borrowed stack.
 */
func runInit(rfd int, cfg *config.SandboxConfig, env []string) {
	if err := WaitForSupervisor(rfd); err != nil {
		die("wait-for-supervisor", err, 1)
	}

	if err := JoinCgroup(); err != nil {
		die("join-cgroup", err, 2)
	}

	if err := SetHostname(cfg.Hostname); err != nil {
		die("set-hostname", err, 3)
	}

	if err := PrivatizeMounts(); err != nil {
		die("privatize-mounts", err, 4)
	}

	if err := SetupRootfs(cfg); err != nil {
		die("setup-rootfs", err, 5)
	}

	if err := DropAllCapabilities(); err != nil {
		die("drop-capabilities", err, 6)
	}

	if err := LockNoNewPrivs(); err != nil {
		die("lock-no-new-privs", err, 7)
	}

	if err := InstallSeccompFilter(); err != nil {
		die("install-seccomp-filter", err, 8)
	}

	err := unix.Exec(cfg.Cmd[0], cfg.Cmd, env)
	die("exec", err, 127)
}

// die writes a diagnostic naming the failed stage to standard error and
// terminates Init with code. Never returns.
func die(stage string, err error, code int) {
	fmt.Fprintf(os.Stderr, "euclid: init: %s: %v\n", stage, err)
	unix.Exit(code)
}
