package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCodeAlphabet(t *testing.T) {
	for range 100 {
		code := NewRoomCode(6)
		require.Len(t, code, 6)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(RoomCodeChars, ch), "unexpected char %q", ch)
		}
	}
}

func TestNewIDIsUUID(t *testing.T) {
	id := NewID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewID())
}
