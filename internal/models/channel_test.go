package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectKey(t *testing.T) {
	assert.Equal(t, DirectKey("a", "b"), DirectKey("b", "a"))
	assert.Equal(t, "a:b", DirectKey("b", "a"))
	assert.NotEqual(t, DirectKey("a", "b"), DirectKey("a", "c"))
}

func TestHasParticipant(t *testing.T) {
	ch := &Channel{Participants: []string{"a", "b"}}
	assert.True(t, ch.HasParticipant("a"))
	assert.False(t, ch.HasParticipant("c"))
}
