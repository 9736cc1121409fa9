//go:build linux

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// cpuMaxPattern matches a well-formed cgroup v2 cpu.max literal: either
// "max PERIOD" or "QUOTA PERIOD", whitespace-separated. The upstream source
// this launcher is modeled after shipped a comma-separated literal here,
// which the kernel rejects; we validate instead of reproducing the bug.
var cpuMaxPattern = regexp.MustCompile(`^(max|[0-9]+) [0-9]+$`)

// SandboxConfig is the immutable bundle of parameters passed to both the
// Supervisor and Init halves of the bring-up protocol. Once built and
// validated it is never mutated; Init only ever reads it.
type SandboxConfig struct {
	// Hostname is set inside the new UTS namespace. Non-empty, <= 64 bytes.
	Hostname string

	// Rootfs is the overlay's lower (read-only) layer. Must exist.
	Rootfs string

	// Cmd is the target command; Cmd[0] is the program.
	Cmd []string

	// CPUMax is a cgroup v2 cpu.max literal, e.g. "100000 100000" or "max 100000".
	CPUMax string

	// MemMax, MemHigh, MemSwapMax are cgroup v2 memory limits.
	MemMax     Limit
	MemHigh    Limit
	MemSwapMax Limit

	// PidsMax caps the number of tasks the cgroup may hold.
	PidsMax Limit

	// OverlayBase is where the tmpfs hosting upper/work/merged is mounted.
	OverlayBase string

	// TmpfsSizeMB sizes the tmpfs backing the overlay's upper/work dirs.
	TmpfsSizeMB int
}

// Validate enforces the invariants of §3: non-empty fields, absolute and
// disjoint paths, a well-formed cpu.max literal, and mem_high <= mem_max
// whenever both are exact.
func (c *SandboxConfig) Validate() error {
	if c.Hostname == "" {
		return fmt.Errorf("config: hostname must not be empty")
	}
	if len(c.Hostname) > 64 {
		return fmt.Errorf("config: hostname %q exceeds 64 bytes", c.Hostname)
	}

	if c.Rootfs == "" || !strings.HasPrefix(c.Rootfs, "/") {
		return fmt.Errorf("config: rootfs must be an absolute path")
	}
	fi, err := os.Stat(c.Rootfs)
	if err != nil {
		return fmt.Errorf("config: rootfs %q: %w", c.Rootfs, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("config: rootfs %q is not a directory", c.Rootfs)
	}

	if len(c.Cmd) == 0 || c.Cmd[0] == "" {
		return fmt.Errorf("config: cmd must be a non-empty command")
	}
	for _, arg := range c.Cmd {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("config: cmd argument %q contains a NUL byte", arg)
		}
	}

	if !cpuMaxPattern.MatchString(c.CPUMax) {
		return fmt.Errorf("config: cpu_max %q does not match %q", c.CPUMax, cpuMaxPattern.String())
	}

	if !c.MemHigh.IsUnlimited() && !c.MemMax.IsUnlimited() {
		if c.MemHigh.Value() > c.MemMax.Value() {
			return fmt.Errorf("config: mem_high (%d) exceeds mem_max (%d)", c.MemHigh.Value(), c.MemMax.Value())
		}
	}

	if c.PidsMax.IsUnlimited() || c.PidsMax.Value() == 0 {
		return fmt.Errorf("config: pids_max must be a positive exact limit")
	}

	if c.OverlayBase == "" || !strings.HasPrefix(c.OverlayBase, "/") {
		return fmt.Errorf("config: overlay_base must be an absolute path")
	}
	if pathsOverlap(c.Rootfs, c.OverlayBase) {
		return fmt.Errorf("config: overlay_base %q overlaps rootfs %q", c.OverlayBase, c.Rootfs)
	}

	if c.TmpfsSizeMB <= 0 {
		return fmt.Errorf("config: tmpfs_size_mb must be positive")
	}

	return nil
}

// pathsOverlap reports whether a is a prefix of b or b is a prefix of a,
// treating paths as directory trees rather than raw strings.
func pathsOverlap(a, b string) bool {
	a = strings.TrimRight(a, "/")
	b = strings.TrimRight(b, "/")
	if a == b {
		return true
	}
	return strings.HasPrefix(a+"/", b+"/") || strings.HasPrefix(b+"/", a+"/")
}
