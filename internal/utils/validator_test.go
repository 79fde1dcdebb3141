package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "alice.smith@example.com", "x+tag@sub.domain.org"}
	for _, s := range valid {
		assert.True(t, ValidEmail(s), s)
	}
	invalid := []string{"", "plain", "a@b", "a b@c.com", "@example.com", "a@"}
	for _, s := range invalid {
		assert.False(t, ValidEmail(s), s)
	}
}

func TestValidPassword(t *testing.T) {
	assert.False(t, ValidPassword("12345"))
	assert.True(t, ValidPassword("123456"))
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "alice", UsernameFromEmail("alice@example.com"))
	assert.Equal(t, "a.b+c", UsernameFromEmail("a.b+c@example.com"))
	assert.Equal(t, "noat", UsernameFromEmail("noat"))
}

func TestBlank(t *testing.T) {
	assert.True(t, Blank(""))
	assert.True(t, Blank(" \t\n"))
	assert.False(t, Blank(" x "))
}
