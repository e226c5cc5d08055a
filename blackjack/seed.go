package main

import (
	"crypto/rand"
	"encoding/binary"
	"os"
	"time"
)

//
// ===== randomness =====
//

// seedStream hands out one deck seed per round (splitmix64).
type seedStream struct{ state uint64 }

func newSeedStream(base uint64) seedStream { return seedStream{state: base} }
func (s *seedStream) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	return z
}

func secureBaseSeed() uint64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:]) ^ uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())
	}
	return uint64(time.Now().UnixNano()) ^ 0xA5A5A5A5A5A5A5A5
}

// baseSeed uses the configured DECK_SEED when set.
func baseSeed(configured int64) uint64 {
	if configured != 0 {
		return uint64(configured)
	}
	return secureBaseSeed()
}
