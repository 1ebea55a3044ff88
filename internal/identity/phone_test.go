package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+5491122334455", "5491122334455"},
		{"+54 9 11 2233-4455", "5491122334455"},
		{"(011) 2233.4455", "1122334455"},
		{"5491122334455", "5491122334455"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanonicalPhone(tc.in), "input %q", tc.in)
	}
}

func TestCanonicalPhoneParts(t *testing.T) {
	assert.Equal(t, "5491122334455", CanonicalPhoneParts("+54", "91122334455"))
	assert.Equal(t, "911234567890", CanonicalPhoneParts("91", "1234567890"))
	assert.Equal(t, "1234", CanonicalPhoneParts("", "12-34"))
}
