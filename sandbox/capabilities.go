//go:build linux

package sandbox

import (
	"errors"
	"fmt"

	"github.com/moby/sys/capability"
	"golang.org/x/sys/unix"
)

// lastCap is the highest capability number known to moby/sys/capability's
// build of the kernel headers. Used to bound the bounding-set drop loop.
func lastCap() capability.Cap {
	var last capability.Cap
	for _, c := range capability.ListKnown() {
		if c > last {
			last = c
		}
	}
	return last
}

/**
 * DropBoundingSet removes every capability from the bounding set, one at a
 * time via PR_CAPBSET_DROP. EINVAL means the kernel doesn't know about that
 * capability number and is tolerated; any other error aborts.
 */
func DropBoundingSet() error {
	for cap := capability.Cap(0); cap <= lastCap(); cap++ {
		if err := unix.Prctl(unix.PR_CAPBSET_DROP, uintptr(cap), 0, 0, 0); err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return fmt.Errorf("sandbox: capabilities: drop bounding cap %d: %w", cap, err)
		}
	}
	return nil
}

/**
 * ClearCapabilitySets zeroes the effective, permitted, and inheritable
 * capability sets via moby/sys/capability's NewPid2 handle, and clears the
 * ambient set besides. Combined with DropBoundingSet this leaves the process
 * with no capabilities it can use now or regain later.
 */
func ClearCapabilitySets() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("sandbox: capabilities: open process caps: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("sandbox: capabilities: load process caps: %w", err)
	}

	caps.Clear(capability.CAPS)
	caps.Clear(capability.BOUNDS)
	caps.Clear(capability.AMBIENT)

	if err := caps.Apply(capability.CAPS | capability.BOUNDS | capability.AMBIENT); err != nil {
		return fmt.Errorf("sandbox: capabilities: apply cleared sets: %w", err)
	}
	return nil
}

/**
 * DropAllCapabilities runs the full capability lockdown of §4.5: drop the
 * bounding set first (so nothing can be regained via a later execve of a
 * setuid/file-capability binary), then clear the remaining sets. There is no
 * allow-list here; the sandbox never runs with any capability.
 */
func DropAllCapabilities() error {
	if err := DropBoundingSet(); err != nil {
		return err
	}
	if err := ClearCapabilitySets(); err != nil {
		return err
	}
	return nil
}

/**
 * LockNoNewPrivs sets PR_SET_NO_NEW_PRIVS, which prevents execve from
 * granting any new privileges (via setuid bits or file capabilities) to this
 * process or its descendants. Must be called before the seccomp filter is
 * installed: the kernel refuses SECCOMP_MODE_FILTER to an unprivileged
 * process that hasn't set this flag.
 */
func LockNoNewPrivs() error {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("sandbox: capabilities: set no_new_privs: %w", err)
	}
	return nil
}
