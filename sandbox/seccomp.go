//go:build linux

package sandbox

import (
	"fmt"

	seccomp "github.com/seccomp/libseccomp-golang"
)

/**
 * whitelistedSyscalls is the full set of syscalls the sandboxed command is
 * permitted to make. Anything outside this list kills the process outright.
 * Notably absent: socket, connect, sendfile, recvfrom (the sandbox's network
 * namespace has no interfaces besides loopback, so socket-family syscalls
 * earn nothing but attack surface), ptrace and the xattr family (reconnaissance
 * primitives), and every mount/namespace syscall (no re-entering or escaping
 * the bring-up the Supervisor already performed).
 */
var whitelistedSyscalls = []string{
	/* file and directory operations */
	"access", "faccessat", "chdir", "close", "dup", "dup2", "dup3",
	"fchmod", "fchmodat", "fchown", "fchownat", "fcntl", "fdatasync",
	"fstat", "fsync", "getcwd", "getdents64", "lseek", "lstat", "mkdir",
	"mkdirat", "newfstatat", "open", "openat", "openat2", "pipe", "poll",
	"pread64", "pwrite64", "read", "readlink", "readlinkat", "readv",
	"rename", "renameat", "renameat2", "rmdir", "stat", "statx", "symlink",
	"symlinkat", "unlink", "unlinkat", "utimensat", "write", "writev",

	/* process management */
	"arch_prctl", "clone", "execve", "execveat", "exit", "exit_group",
	"fork", "getpid", "getpgid", "getppid", "gettid", "getuid", "geteuid",
	"prctl", "setpgid", "wait4", "waitid",

	/* memory management */
	"brk", "madvise", "mmap", "mprotect", "mremap", "munmap",

	/* time and scheduling */
	"clock_gettime", "clock_nanosleep", "gettimeofday", "nanosleep",
	"time", "sched_yield",

	/* signals */
	"rt_sigaction", "rt_sigprocmask", "rt_sigreturn", "sigaltstack",
	"tgkill", "tkill",

	/* resource limits */
	"getrlimit", "prlimit64", "setrlimit",

	/* miscellaneous */
	"futex", "getrandom", "ioctl", "set_robust_list", "set_tid_address",
	"uname", "umask",
}

/**
 * InstallSeccompFilter builds and loads a seccomp-BPF filter with
 * SECCOMP_RET_KILL_PROCESS as the default action and an ALLOW rule for every
 * syscall in whitelistedSyscalls. Must run after LockNoNewPrivs: the kernel
 * refuses to install a filter from an unprivileged process that hasn't set
 * no_new_privs first. Once loaded, the filter cannot be removed or relaxed.
 */
func InstallSeccompFilter() error {
	filter, err := seccomp.NewFilter(seccomp.ActKillProcess)
	if err != nil {
		return fmt.Errorf("sandbox: seccomp: new filter: %w", err)
	}
	defer filter.Release()

	for _, name := range whitelistedSyscalls {
		sc, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			return fmt.Errorf("sandbox: seccomp: unknown syscall %q: %w", name, err)
		}
		if err := filter.AddRule(sc, seccomp.ActAllow); err != nil {
			return fmt.Errorf("sandbox: seccomp: add rule %q: %w", name, err)
		}
	}

	if err := filter.Load(); err != nil {
		return fmt.Errorf("sandbox: seccomp: load: %w", err)
	}

	return nil
}
