//go:build linux

package config

import "testing"

func TestLimitString(t *testing.T) {
	tests := []struct {
		name string
		l    Limit
		want string
	}{
		{"unlimited", Unlimited(), "max"},
		{"zero", Exact(0), "0"},
		{"exact", Exact(536870912), "536870912"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.l.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimitIsUnlimited(t *testing.T) {
	if !Unlimited().IsUnlimited() {
		t.Error("Unlimited() should report IsUnlimited true")
	}
	if Exact(10).IsUnlimited() {
		t.Error("Exact(10) should report IsUnlimited false")
	}
}

func TestLimitValue(t *testing.T) {
	if got := Exact(42).Value(); got != 42 {
		t.Errorf("Value() = %d, want 42", got)
	}
}
