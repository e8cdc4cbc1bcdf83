package sdruntime

import (
	"crypto/rand"
	"encoding/binary"
)

// RandomSeed returns a non-negative seed drawn from crypto/rand. The seed is
// reported back to the caller so a result can be reproduced.
func RandomSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 42
	}

	// Clearing the sign bit keeps the value within the range the sd CLI
	// accepts for -s.
	return int64(binary.LittleEndian.Uint64(buf[:]) &^ (1 << 63))
}
