package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasSuffix(t *testing.T) {
	cases := []struct {
		addr string
		want bool
	}{
		{"student@muc.edu.eg", true},
		{"  Student@MUC.edu.eg ", true},
		{"student@gmail.com", false},
		{"student@muc.edu.eg.evil.com", false},
		{"@muc.edu.eg", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HasSuffix(tc.addr, "@muc.edu.eg"), tc.addr)
	}
}

func TestHasSuffix_EmptySuffixRejectsEverything(t *testing.T) {
	assert.False(t, HasSuffix("student@muc.edu.eg", ""))
}

func TestHasSuffix_DomainWithoutAt(t *testing.T) {
	assert.True(t, HasSuffix("student@muc.edu.eg", "muc.edu.eg"))
	assert.True(t, HasSuffix("student@muc.edu.eg", " MUC.edu.eg "))
	assert.False(t, HasSuffix("x@evilmuc.edu.eg", "muc.edu.eg"))
	assert.False(t, HasSuffix("x@evilmuc.edu.eg", "@muc.edu.eg"))
}

func TestDomainSuffix(t *testing.T) {
	assert.Equal(t, "@muc.edu.eg", DomainSuffix("muc.edu.eg"))
	assert.Equal(t, "@muc.edu.eg", DomainSuffix(" @MUC.edu.eg"))
	assert.Equal(t, "", DomainSuffix("  "))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a.b@muc.edu.eg", Normalize("  A.B@MUC.edu.eg\n"))
}
