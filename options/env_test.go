//go:build linux

package options

import (
	"testing"

	"github.com/nniemeir/euclid/sandbox"
	"github.com/stretchr/testify/require"
)

func TestParseEnvValid(t *testing.T) {
	ev, err := ParseEnv("FOO=bar")
	require.NoError(t, err)
	require.Equal(t, sandbox.EnvVar{Key: "FOO", Val: "bar"}, ev)
}

func TestParseEnvValueWithEquals(t *testing.T) {
	ev, err := ParseEnv("FOO=bar=baz")
	require.NoError(t, err)
	require.Equal(t, "bar=baz", ev.Val)
}

func TestParseEnvRejectsMissingKey(t *testing.T) {
	_, err := ParseEnv("=bar")
	require.Error(t, err)
}

func TestParseEnvRejectsMissingEquals(t *testing.T) {
	_, err := ParseEnv("FOOBAR")
	require.Error(t, err)
}

func TestMergeEnvOverridesDefaults(t *testing.T) {
	defaults := map[string]string{"PATH": "/bin", "HOME": "/root"}
	user := []sandbox.EnvVar{{Key: "HOME", Val: "/home/sandboxed"}}

	merged := MergeEnv(defaults, user)

	var home string
	for _, e := range merged {
		if e.Key == "HOME" {
			home = e.Val
		}
	}
	require.Equal(t, "/home/sandboxed", home)
}

func TestMergeEnvKeepsExtraUserKeys(t *testing.T) {
	defaults := map[string]string{"PATH": "/bin"}
	user := []sandbox.EnvVar{{Key: "CUSTOM", Val: "1"}}

	merged := MergeEnv(defaults, user)

	found := false
	for _, e := range merged {
		if e.Key == "CUSTOM" && e.Val == "1" {
			found = true
		}
	}
	require.True(t, found)
}
