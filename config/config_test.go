//go:build linux

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *SandboxConfig {
	t.Helper()
	rootfs := t.TempDir()
	return &SandboxConfig{
		Hostname:    "sandbox",
		Rootfs:      rootfs,
		Cmd:         []string{"/bin/sh", "-c", "true"},
		CPUMax:      "100000 100000",
		MemMax:      Exact(536870912),
		MemHigh:     Unlimited(),
		MemSwapMax:  Exact(0),
		PidsMax:     Exact(64),
		OverlayBase: "/run/euclid/overlay",
		TmpfsSizeMB: 64,
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsEmptyHostname(t *testing.T) {
	cfg := validConfig(t)
	cfg.Hostname = ""
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOverlongHostname(t *testing.T) {
	cfg := validConfig(t)
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	cfg.Hostname = string(long)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsRelativeRootfs(t *testing.T) {
	cfg := validConfig(t)
	cfg.Rootfs = "relative/path"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingRootfs(t *testing.T) {
	cfg := validConfig(t)
	cfg.Rootfs = "/nonexistent/path/for/euclid/tests"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsEmptyCmd(t *testing.T) {
	cfg := validConfig(t)
	cfg.Cmd = nil
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNulInCmdArgument(t *testing.T) {
	cfg := validConfig(t)
	cfg.Cmd = []string{"/bin/sh", "-c", "bad\x00arg"}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBuggyCommaSeparatedCPUMax(t *testing.T) {
	// The upstream implementation this is modeled after shipped
	// "100000, 100000" (comma-separated); the kernel rejects it.
	cfg := validConfig(t)
	cfg.CPUMax = "100000, 100000"
	require.Error(t, cfg.Validate())
}

func TestValidateAcceptsMaxCPUMax(t *testing.T) {
	cfg := validConfig(t)
	cfg.CPUMax = "max 100000"
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsMemHighAboveMemMax(t *testing.T) {
	cfg := validConfig(t)
	cfg.MemMax = Exact(1024)
	cfg.MemHigh = Exact(2048)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroPidsMax(t *testing.T) {
	cfg := validConfig(t)
	cfg.PidsMax = Exact(0)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnlimitedPidsMax(t *testing.T) {
	cfg := validConfig(t)
	cfg.PidsMax = Unlimited()
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsOverlayBaseOverlappingRootfs(t *testing.T) {
	cfg := validConfig(t)
	cfg.OverlayBase = cfg.Rootfs
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveTmpfsSize(t *testing.T) {
	cfg := validConfig(t)
	cfg.TmpfsSizeMB = 0
	require.Error(t, cfg.Validate())
}

func TestPathsOverlap(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"/a/b", "/a/b", true},
		{"/a/b", "/a/b/c", true},
		{"/a/b/c", "/a/b", true},
		{"/a/b", "/a/bc", false},
		{"/a/b/", "/a/b", true},
	}
	for _, tt := range tests {
		if got := pathsOverlap(tt.a, tt.b); got != tt.want {
			t.Errorf("pathsOverlap(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
