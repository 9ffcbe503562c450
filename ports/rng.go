package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic
// resampling. It is the only place randomness enters the engine.
type RNGPort interface {
	// SeededStream creates a deterministic generator for a named operation.
	// The same (name, seed) pair always yields the same stream.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// WorkerStream derives an independent deterministic stream for one
	// parallel worker, so concurrent resampling workers never share state.
	WorkerStream(ctx context.Context, name string, seed int64, worker int) (*rand.Rand, error)

	// Entropy returns a non-reproducible generator seeded from fresh
	// entropy, used when the caller passes no seed.
	Entropy(ctx context.Context) (*rand.Rand, error)
}
