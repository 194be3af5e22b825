package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
	"sync"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Source is a goroutine-safe random source for shuffling decks and rolling
// tutorial bot bids.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Source seeded deterministically from the provided int64.
// A zero seed draws a random one.
func New(seed int64) *Source {
	if seed == 0 {
		seed = randomSeed()
	}

	u := uint64(seed)
	return &Source{rng: rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))}
}

func (that *Source) Shuffle(n int, swap func(i, j int)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rng.Shuffle(n, swap)
}

// IntN returns a value in [0, n).
func (that *Source) IntN(n int) int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rng.IntN(n)
}

func randomSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("failed to seed random source: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
