package trcutil

import (
	"testing"
	"time"
)

func TestHumanizeMicros(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		us   int64
		want string
	}{
		{0, "0s"},
		{250, "250µs"},
		{1_234, "1.2ms"},
		{-1_234, "-1.2ms"},
		{12_345, "12ms"},
		{2_345_678, "2.3s"},
		{int64(90 * time.Minute / time.Microsecond), "1h30m"},
	} {
		if want, have := tc.want, HumanizeMicros(tc.us); want != have {
			t.Errorf("%d: want %q, have %q", tc.us, want, have)
		}
	}
}

func TestHumanizeBytes(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		n    uint64
		want string
	}{
		{0, "0B"},
		{1023, "1023B"},
		{1024, "1.0KB"},
		{2048, "2.0KB"},
		{512 * 1024, "512KB"},
		{3 * 1024 * 1024, "3.0MB"},
	} {
		if want, have := tc.want, HumanizeBytes(tc.n); want != have {
			t.Errorf("%d: want %q, have %q", tc.n, want, have)
		}
	}
}

func TestHumanizePercent(t *testing.T) {
	t.Parallel()

	if want, have := "0%", HumanizePercent(0); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := "0.5%", HumanizePercent(0.5); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
	if want, have := "25%", HumanizePercent(25); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}
