package rng

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// DeterministicRNG implements ports.RNGPort with stable stream derivation:
// the effective seed for a stream is a hash of (name, seed, worker), so two
// streams with different names or worker indices never overlap even when the
// base seed is shared.
type DeterministicRNG struct{}

// New creates a deterministic RNG adapter.
func New() *DeterministicRNG {
	return &DeterministicRNG{}
}

// SeededStream returns a generator for a named operation.
func (r *DeterministicRNG) SeededStream(ctx context.Context, name string, seed int64) (*mrand.Rand, error) {
	return mrand.New(mrand.NewSource(deriveSeed(name, seed, 0))), nil
}

// WorkerStream returns an independent generator for one parallel worker.
func (r *DeterministicRNG) WorkerStream(ctx context.Context, name string, seed int64, worker int) (*mrand.Rand, error) {
	return mrand.New(mrand.NewSource(deriveSeed(name, seed, worker))), nil
}

// Entropy returns a fresh, non-reproducible generator.
func (r *DeterministicRNG) Entropy(ctx context.Context) (*mrand.Rand, error) {
	return mrand.New(mrand.NewSource(time.Now().UnixNano())), nil
}

// deriveSeed hashes the stream identity into an int64 seed.
func deriveSeed(name string, seed int64, worker int) int64 {
	h := sha256.New()
	h.Write([]byte(name))
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(seed))
	binary.LittleEndian.PutUint64(buf[8:], uint64(worker))
	h.Write(buf[:])
	sum := h.Sum(nil)
	derived := int64(binary.LittleEndian.Uint64(sum[:8]))
	if derived < 0 {
		derived = -derived
	}
	return derived
}
