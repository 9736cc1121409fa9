//go:build linux

// Package config holds the immutable bundle of sandbox parameters shared
// between the Supervisor and Init across the bring-up protocol.
package config

import "strconv"

// Limit models a cgroup v2 numeric control file value: either an exact
// byte/count limit or the literal "max" (unlimited). It replaces the
// sentinel-driven "-1 means max" convention with a sum type.
type Limit struct {
	unlimited bool
	value     uint64
}

// Unlimited returns a Limit that serializes to the literal "max".
func Unlimited() Limit {
	return Limit{unlimited: true}
}

// Exact returns a Limit that serializes to the decimal value n.
func Exact(n uint64) Limit {
	return Limit{value: n}
}

// IsUnlimited reports whether the limit is the "max" sentinel.
func (l Limit) IsUnlimited() bool {
	return l.unlimited
}

// Value returns the exact numeric value. Only meaningful when !IsUnlimited().
func (l Limit) Value() uint64 {
	return l.value
}

// String renders the limit the way a cgroup v2 control file expects it,
// without the trailing newline (callers append one when writing).
func (l Limit) String() string {
	if l.unlimited {
		return "max"
	}
	return strconv.FormatUint(l.value, 10)
}
