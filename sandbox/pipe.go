//go:build linux

package sandbox

import (
	"fmt"

	"golang.org/x/sys/unix"
)

/**
 * Create the one-shot synchronization pipe between Supervisor and Init.
 * The write end stays with the Supervisor, the read end is inherited by
 * Init across clone3. Both ends are O_CLOEXEC so a stray descriptor never
 * leaks into the exec'd target.
 * @return read and write file descriptors of the pipe, or an error if any
 */
func MakeSyncPipe() (int, int, error) {
	var p [2]int
	if err := unix.Pipe2(p[:], unix.O_CLOEXEC); err != nil {
		return -1, -1, fmt.Errorf("sandbox: create sync pipe: %w", err)
	}
	return p[0], p[1], nil
}

/**
 * WaitForSupervisor blocks Init on the sync pipe's read end until the
 * Supervisor has finished cgroup configuration and written the release
 * byte. EOF (Supervisor died before writing) is fatal: Init must not join
 * the cgroup or touch the filesystem in that case.
 * @param rfd the read file descriptor of the pipe
 * @return error if any
 */
func WaitForSupervisor(rfd int) error {
	var one [1]byte
	n, err := unix.Read(rfd, one[:])
	_ = unix.Close(rfd)
	if err != nil {
		return fmt.Errorf("sandbox: read sync pipe: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("sandbox: sync pipe closed before release (supervisor died)")
	}
	return nil
}

/**
 * ReleaseInit writes the single release byte once all cgroup configuration
 * has succeeded. The byte's value is never inspected by Init.
 * @param wfd the write file descriptor of the pipe
 * @return error if any
 */
func ReleaseInit(wfd int) error {
	_, err := unix.Write(wfd, []byte{1})
	cerr := unix.Close(wfd)
	if err != nil {
		return fmt.Errorf("sandbox: write sync pipe: %w", err)
	}
	if cerr != nil {
		return fmt.Errorf("sandbox: close sync pipe write end: %w", cerr)
	}
	return nil
}

/**
 * ClosePipe closes both ends of the pipe, used on Supervisor error paths
 * taken before the pipe handoff completes.
 * @param rfd the read file descriptor of the pipe
 * @param wfd the write file descriptor of the pipe
 */
func ClosePipe(rfd, wfd int) {
	_ = unix.Close(rfd)
	_ = unix.Close(wfd)
}
