package trcprof_test

import (
	"encoding/json"
	"testing"
	"unicode"

	"github.com/peterbourgon/trcprof"
	"pgregory.net/rapid"
)

func TestEscapeString(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in, want string
	}{
		{``, ``},
		{`plain/path.go`, `plain/path.go`},
		{`a"b\c`, `a\"b\\c`},
		{"\b\f\n\r\t", `\b\f\n\r\t`},
		{"ünïcode ✓", "ünïcode ✓"},
	} {
		AssertEqual(t, tc.want, trcprof.EscapeString(tc.in))
	}
}

func TestEscapeStringRoundTrip(t *testing.T) {
	t.Parallel()

	// Control characters other than the escaped ones are passed through
	// unchanged, and so aren't valid JSON; the generator avoids them.
	var (
		specials = []rune{'"', '\\', '\b', '\f', '\n', '\r', '\t', '/'}
		runes    = rapid.RuneFrom(specials, unicode.L, unicode.N, unicode.P, unicode.S, unicode.Zs)
		strs     = rapid.StringOf(runes)
	)
	rapid.Check(t, func(rt *rapid.T) {
		s := strs.Draw(rt, "s")

		var have string
		if err := json.Unmarshal([]byte(`"`+trcprof.EscapeString(s)+`"`), &have); err != nil {
			rt.Fatalf("%q: %v", s, err)
		}
		if have != s {
			rt.Fatalf("want %q, have %q", s, have)
		}
	})
}
