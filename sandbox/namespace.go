//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

/**
 * SetHostname sets the UTS namespace hostname. Must run after clone3 has
 * already placed Init in its own UTS namespace, never on the host.
 */
func SetHostname(hostname string) error {
	if err := unix.Sethostname([]byte(hostname)); err != nil {
		return fmt.Errorf("sandbox: set hostname: %w", err)
	}
	return nil
}

/**
 * PrivatizeMounts recursively marks the whole mount tree MS_PRIVATE so that
 * mount and unmount events inside the sandbox never propagate back to the
 * host's mount namespace, and vice versa. Must run before any mount or
 * pivot_root call below it.
 */
func PrivatizeMounts() error {
	if err := unix.Mount("", "/", "", unix.MS_PRIVATE|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("sandbox: privatize mount tree: %w", err)
	}
	return nil
}
