//go:build linux

package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestResultFromWaitStatusNormalExit(t *testing.T) {
	var ws unix.WaitStatus
	// Encode a normal exit with status 7 the way the kernel would.
	ws = unix.WaitStatus(7 << 8)

	result := resultFromWaitStatus(ws)

	require.False(t, result.Signaled)
	require.Equal(t, 7, result.ExitCode)
	require.False(t, result.SeccompKilled)
}

func TestResultFromWaitStatusSignaled(t *testing.T) {
	var ws unix.WaitStatus
	ws = unix.WaitStatus(uint32(unix.SIGKILL))

	result := resultFromWaitStatus(ws)

	require.True(t, result.Signaled)
	require.Equal(t, unix.SIGKILL, result.Signal)
	require.False(t, result.SeccompKilled)
}

func TestResultFromWaitStatusSeccompKill(t *testing.T) {
	var ws unix.WaitStatus
	ws = unix.WaitStatus(uint32(unix.SIGSYS))

	result := resultFromWaitStatus(ws)

	require.True(t, result.Signaled)
	require.Equal(t, unix.SIGSYS, result.Signal)
	require.True(t, result.SeccompKilled)
}
