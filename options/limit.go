//go:build linux

package options

import (
	"fmt"
	"strconv"

	"github.com/inhies/go-bytesize"
	"github.com/nniemeir/euclid/config"
)

/**
 * parseByteLimit parses a memory-flavored cgroup limit: the literal "max"
 * becomes config.Unlimited, a bare integer is a count of bytes, and anything
 * else is parsed as a byte size via go-bytesize (e.g. "512MB", "1GB").
 */
func parseByteLimit(name, s string) (config.Limit, error) {
	if s == "max" {
		return config.Unlimited(), nil
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return config.Exact(n), nil
	}
	size, err := bytesize.Parse(s)
	if err != nil {
		return config.Limit{}, fmt.Errorf("bad --%s %q: %w", name, s, err)
	}
	return config.Exact(uint64(size)), nil
}

/**
 * parsePidsLimit parses the --pids-max flag. Unlike the memory limits, pids
 * is a plain task count, not a byte size, and per config.SandboxConfig must
 * always be a positive exact value.
 */
func parsePidsLimit(s string) (config.Limit, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return config.Limit{}, fmt.Errorf("bad --pids-max %q: must be a positive integer", s)
	}
	return config.Exact(n), nil
}
