//go:build linux

package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWhitelistedSyscallsHasNoDuplicates(t *testing.T) {
	seen := make(map[string]struct{}, len(whitelistedSyscalls))
	for _, name := range whitelistedSyscalls {
		_, dup := seen[name]
		require.Falsef(t, dup, "duplicate syscall in whitelist: %s", name)
		seen[name] = struct{}{}
	}
}

func TestWhitelistExcludesNetworkSyscalls(t *testing.T) {
	excluded := []string{"socket", "connect", "sendfile", "recvfrom", "bind", "listen", "accept"}
	present := make(map[string]struct{}, len(whitelistedSyscalls))
	for _, name := range whitelistedSyscalls {
		present[name] = struct{}{}
	}
	for _, name := range excluded {
		_, ok := present[name]
		require.Falsef(t, ok, "network syscall %q must not be whitelisted", name)
	}
}

func TestWhitelistExcludesMountAndNamespaceEscapeSyscalls(t *testing.T) {
	excluded := []string{"mount", "umount", "umount2", "pivot_root", "setns", "unshare", "ptrace"}
	present := make(map[string]struct{}, len(whitelistedSyscalls))
	for _, name := range whitelistedSyscalls {
		present[name] = struct{}{}
	}
	for _, name := range excluded {
		_, ok := present[name]
		require.Falsef(t, ok, "escape-hatch syscall %q must not be whitelisted", name)
	}
}
