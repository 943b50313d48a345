package brainio

import "math/rand"

// xorShift128 is the four-word xorshift generator the original strategy
// seeded its randomness from, reproduced here so the seeding scheme named
// in the concurrency model (two 32-bit halves XOR-combined with a constant
// to build a four-word state) carries through exactly rather than being
// replaced by an arbitrary stdlib seed.
type xorShift128 struct {
	x, y, z, w uint32
}

func newXorShift128(seedHi, seedLo uint32) *xorShift128 {
	a := seedLo
	b := seedHi
	c := a ^ b
	const d = 0x113BA7BB
	return &xorShift128{x: a, y: b, z: c, w: d}
}

func (s *xorShift128) nextU32() uint32 {
	t := s.x ^ (s.x << 11)
	s.x, s.y, s.z = s.y, s.z, s.w
	s.w = s.w ^ (s.w >> 19) ^ (t ^ (t >> 8))
	return s.w
}

// Int63 satisfies rand.Source by packing two 32-bit draws into 63 bits.
func (s *xorShift128) Int63() int64 {
	hi := uint64(s.nextU32())
	lo := uint64(s.nextU32())
	return int64((hi<<32 | lo) &^ (1 << 63))
}

// Seed is a no-op: this source is always constructed pre-seeded from the
// game's random_seed via newXorShift128, never reseeded mid-match.
func (s *xorShift128) Seed(int64) {}

// newXorShiftRand builds the *rand.Rand the planner draws scout targets
// from, seeded once from the two halves of the game's random_seed.
func newXorShiftRand(seedHi, seedLo uint32) *rand.Rand {
	return rand.New(newXorShift128(seedHi, seedLo))
}
