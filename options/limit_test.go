//go:build linux

package options

import (
	"testing"

	"github.com/nniemeir/euclid/config"
	"github.com/stretchr/testify/require"
)

func TestParseByteLimitMax(t *testing.T) {
	l, err := parseByteLimit("mem-max", "max")
	require.NoError(t, err)
	require.True(t, l.IsUnlimited())
}

func TestParseByteLimitExact(t *testing.T) {
	l, err := parseByteLimit("mem-max", "512MB")
	require.NoError(t, err)
	require.False(t, l.IsUnlimited())
	require.Equal(t, uint64(512*1024*1024), l.Value())
}

func TestParseByteLimitRejectsGarbage(t *testing.T) {
	_, err := parseByteLimit("mem-max", "not-a-size")
	require.Error(t, err)
}

func TestParsePidsLimitRejectsZero(t *testing.T) {
	_, err := parsePidsLimit("0")
	require.Error(t, err)
}

func TestParsePidsLimitRejectsUnlimitedLiteral(t *testing.T) {
	_, err := parsePidsLimit("max")
	require.Error(t, err)
}

func TestParsePidsLimitAcceptsPositiveInteger(t *testing.T) {
	l, err := parsePidsLimit("128")
	require.NoError(t, err)
	require.Equal(t, config.Exact(128), l)
}
