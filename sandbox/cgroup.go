//go:build linux

package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/nniemeir/euclid/config"
)

const (
	cgRoot  = "/sys/fs/cgroup"
	cgGroup = "/sys/fs/cgroup/euclid"
)

/**
 * enableControllers writes "+cpu +memory +pids" to the root's
 * cgroup.subtree_control so the euclid cgroup can accept limits on those
 * controllers. EBUSY and EINVAL are tolerated: the kernel returns them when
 * a controller is already enabled or already has live children, which is
 * harmless here.
 */
func enableControllers() error {
	f, err := os.OpenFile(
		filepath.Join(cgRoot, "cgroup.subtree_control"),
		os.O_WRONLY|syscall.O_CLOEXEC,
		0,
	)
	if err != nil {
		return fmt.Errorf("open cgroup.subtree_control: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString("+cpu +memory +pids\n"); err != nil &&
		!errors.Is(err, syscall.EBUSY) && !errors.Is(err, syscall.EINVAL) {
		return fmt.Errorf("write cgroup.subtree_control: %w", err)
	}
	return nil
}

/**
 * writeLimit serializes a literal control value with a trailing newline
 * into the named file under the euclid cgroup.
 */
func writeLimit(filename, literal string) error {
	path := filepath.Join(cgGroup, filename)
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(literal + "\n"); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

/**
 * ConfigureCgroup performs the Supervisor-side half of the bring-up
 * protocol's cgroup stage: enable controllers at the root, create the
 * fixed-path euclid cgroup, and write the cpu/memory/pids limits from cfg.
 * Called before the sync pipe is released, so Init never observes a
 * partially configured cgroup.
 */
func ConfigureCgroup(cfg *config.SandboxConfig) error {
	if err := enableControllers(); err != nil {
		return fmt.Errorf("sandbox: cgroup: %w", err)
	}

	if err := os.Mkdir(cgGroup, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("sandbox: cgroup: mkdir %s: %w", cgGroup, err)
	}

	if err := writeLimit("cpu.max", cfg.CPUMax); err != nil {
		return fmt.Errorf("sandbox: cgroup: %w", err)
	}
	if err := writeLimit("memory.max", cfg.MemMax.String()); err != nil {
		return fmt.Errorf("sandbox: cgroup: %w", err)
	}
	if err := writeLimit("memory.high", cfg.MemHigh.String()); err != nil {
		return fmt.Errorf("sandbox: cgroup: %w", err)
	}
	if err := writeLimit("memory.swap.max", cfg.MemSwapMax.String()); err != nil {
		return fmt.Errorf("sandbox: cgroup: %w", err)
	}
	if err := writeLimit("pids.max", cfg.PidsMax.String()); err != nil {
		return fmt.Errorf("sandbox: cgroup: %w", err)
	}

	return nil
}

/**
 * JoinCgroup is the Init-side half: write "0" to cgroup.procs, which the
 * kernel resolves to the calling process. Must only run after the sync
 * byte arrives, once the Supervisor has finished writing limits.
 */
func JoinCgroup() error {
	path := filepath.Join(cgGroup, "cgroup.procs")
	f, err := os.OpenFile(path, os.O_WRONLY|syscall.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("sandbox: cgroup: open cgroup.procs: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString("0\n"); err != nil {
		return fmt.Errorf("sandbox: cgroup: join: %w", err)
	}
	return nil
}

/**
 * CleanupCgroup removes the euclid cgroup after Init has exited. Safe to
 * call even if ConfigureCgroup never completed.
 */
func CleanupCgroup() error {
	if err := os.Remove(cgGroup); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sandbox: cgroup: remove %s: %w", cgGroup, err)
	}
	return nil
}

// CgroupPath returns the fixed path of the sandbox cgroup.
func CgroupPath() string {
	return cgGroup
}
