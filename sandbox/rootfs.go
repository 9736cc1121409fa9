//go:build linux

package sandbox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nniemeir/euclid/config"
	"golang.org/x/sys/unix"
)

/**
 * overlayDirs holds the three overlay directories created on top of the
 * tmpfs at cfg.OverlayBase.
 */
type overlayDirs struct {
	upper  string
	work   string
	merged string
}

/**
 * mountOverlayTmpfs mounts the tmpfs backing the overlay's writable layers.
 * Everything under it lives in RAM and disappears once the sandbox exits.
 */
func mountOverlayTmpfs(cfg *config.SandboxConfig) error {
	if err := os.MkdirAll(cfg.OverlayBase, 0o755); err != nil {
		return fmt.Errorf("mkdir overlay base %s: %w", cfg.OverlayBase, err)
	}
	opts := fmt.Sprintf("size=%dM", cfg.TmpfsSizeMB)
	if err := unix.Mount("tmpfs", cfg.OverlayBase, "tmpfs", 0, opts); err != nil {
		return fmt.Errorf("mount tmpfs at %s: %w", cfg.OverlayBase, err)
	}
	return nil
}

func buildOverlayDirs(base string) *overlayDirs {
	return &overlayDirs{
		upper:  filepath.Join(base, "upper"),
		work:   filepath.Join(base, "work"),
		merged: filepath.Join(base, "merged"),
	}
}

func (d *overlayDirs) make() error {
	for _, dir := range []string{d.work, d.upper, d.merged} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return nil
}

/**
 * mountOverlay mounts the overlay filesystem using lower as the read-only
 * original rootfs and d's upper/work/merged directories. On success, the
 * merged directory is the rootfs the sandbox will pivot_root into.
 */
func mountOverlay(lower string, d *overlayDirs) error {
	opts := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", lower, d.upper, d.work)
	if err := unix.Mount("overlay", d.merged, "overlay", 0, opts); err != nil {
		return fmt.Errorf("mount overlay: %w", err)
	}
	return nil
}

/**
 * pivotInto bind-mounts newRoot onto itself to satisfy pivot_root's
 * mountpoint requirement, then pivots the root mount to newRoot and lazily
 * detaches the old root so the sandbox loses access to the host filesystem.
 */
func pivotInto(newRoot string) error {
	if err := unix.Mount(newRoot, newRoot, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind-mount rootfs onto itself: %w", err)
	}

	putOld := filepath.Join(newRoot, ".pivot_old")
	if err := os.Mkdir(putOld, 0o700); err != nil && !os.IsExist(err) {
		return fmt.Errorf("mkdir %s: %w", putOld, err)
	}

	if err := unix.PivotRoot(newRoot, putOld); err != nil {
		return fmt.Errorf("pivot_root: %w", err)
	}

	if err := os.Chdir("/"); err != nil {
		return fmt.Errorf("chdir to new root: %w", err)
	}

	if err := unix.Unmount("/.pivot_old", unix.MNT_DETACH); err != nil {
		return fmt.Errorf("unmount old root: %w", err)
	}

	if err := os.Remove("/.pivot_old"); err != nil {
		return fmt.Errorf("remove old root mountpoint: %w", err)
	}

	return nil
}

/**
 * mountDev mounts a fresh devtmpfs at /dev. Because Init runs in its own
 * mount namespace, this devtmpfs is entirely separate from the host's.
 */
func mountDev() error {
	if err := unix.Mount("devtmpfs", "/dev", "devtmpfs", 0, ""); err != nil {
		return fmt.Errorf("mount devtmpfs: %w", err)
	}
	return nil
}

/**
 * mountProc mounts a fresh procfs at /proc. Combined with the PID namespace,
 * it only ever shows processes inside the sandbox.
 */
func mountProc() error {
	if err := unix.Mount("proc", "/proc", "proc", 0, ""); err != nil {
		return fmt.Errorf("mount proc: %w", err)
	}
	return nil
}

/**
 * ensureTmp makes sure /tmp exists world-writable and sticky once the new
 * root is in place, since the merged view starts out as whatever the
 * rootfs's lower layer already had and many programs assume /tmp is there
 * unconditionally.
 */
func ensureTmp() error {
	if err := os.MkdirAll("/tmp", 0o777|os.ModeSticky); err != nil {
		return fmt.Errorf("mkdir /tmp: %w", err)
	}
	if err := os.Chmod("/tmp", 0o777|os.ModeSticky); err != nil {
		return fmt.Errorf("chmod /tmp: %w", err)
	}
	return nil
}

/**
 * SetupRootfs runs the full filesystem assembly stage of §4.4: mount the
 * overlay's backing tmpfs, build and mount the overlay itself, pivot_root
 * into the merged view, then mount /proc and /dev inside it. Must run after
 * PrivatizeMounts and before capability/seccomp lockdown.
 */
func SetupRootfs(cfg *config.SandboxConfig) error {
	if err := mountOverlayTmpfs(cfg); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	dirs := buildOverlayDirs(cfg.OverlayBase)
	if err := dirs.make(); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	if err := mountOverlay(cfg.Rootfs, dirs); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	if err := pivotInto(dirs.merged); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	if err := mountProc(); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	if err := mountDev(); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	if err := ensureTmp(); err != nil {
		return fmt.Errorf("sandbox: rootfs: %w", err)
	}

	return nil
}
