package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveNameFromEmail(t *testing.T) {
	cases := []struct {
		in    string
		first string
		last  string
	}{
		{"valerie.frizzle@example.com", "Valerie", "Frizzle"},
		{"ada@example.com", "Ada", "User"},
		{"john_q_public@example.com", "John", "Public"},
		{"jane-doe+school@example.com", "Jane", "School"},
		{"@example.com", "User", "User"},
		{"", "User", "User"},
		{"no-at-sign", "No", "Sign"},
	}
	for _, tc := range cases {
		first, last := DeriveNameFromEmail(tc.in)
		assert.Equal(t, tc.first, first, "first name for %q", tc.in)
		assert.Equal(t, tc.last, last, "last name for %q", tc.in)
	}
}
