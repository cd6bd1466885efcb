package trials

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeed draws a high-entropy seed from crypto/rand. It never returns zero, which
// configuration reserves for "pick one for me".
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]))
	if seed == 0 {
		seed = 1
	}
	return seed, nil
}

// DeriveSeed returns the seed for one trial. Trials get well-separated streams even for
// adjacent indices, and the mapping depends only on (master, trial), so results do not
// depend on how trials are scheduled.
func DeriveSeed(master int64, trial int) int64 {
	// splitmix64 finalizer
	z := uint64(master) + uint64(trial+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

// NewRand returns an independent generator for one trial.
func NewRand(master int64, trial int) *rand.Rand {
	return rand.New(rand.NewSource(DeriveSeed(master, trial)))
}
