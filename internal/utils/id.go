package utils

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"

	"github.com/google/uuid"
)

// RoomCodeChars excludes characters that are easy to misread (0/O, 1/I).
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewID returns a unique connection identifier.
func NewID() string {
	return uuid.NewString()
}

// NewRoomCode returns a random, human-typable room code of the given length.
func NewRoomCode(length int) string {
	code := make([]byte, length)
	for i := range length {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(RoomCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = RoomCodeChars[rand.Intn(len(RoomCodeChars))]
			continue
		}
		code[i] = RoomCodeChars[n.Int64()]
	}
	return string(code)
}
