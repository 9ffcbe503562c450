// Package resample generates bootstrap and permutation distributions of an
// arbitrary statistic over a paired sample. It is the only component in the
// engine that consumes randomness.
package resample

import (
	"context"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"sefval/domain/core"
	"sefval/domain/sample"
	"sefval/ports"
)

// Mode selects the resampling semantics.
type Mode int

const (
	// ModeBootstrap draws observations with replacement at the input size.
	// Paired samples are resampled as whole pairs so the pairing structure
	// survives; independent samples resample each side's index set on its own.
	ModeBootstrap Mode = iota

	// ModePermutation shuffles entity labels while holding the union of
	// values fixed, building a null distribution under "no true difference".
	// Paired samples swap A/B within each pair with probability one half;
	// independent samples pool, shuffle and re-split.
	ModePermutation
)

// Statistic maps a sample to a scalar. ok=false marks the draw as undefined
// for this resample; such repetitions are dropped and counted, never coerced
// to a number.
type Statistic func(s sample.PairedSample) (float64, bool)

// Config parameterizes one resampling run.
type Config struct {
	Mode        Mode
	Repetitions int

	// Seed enables reproducible streams. Nil means fresh entropy per call.
	Seed *int64

	// Workers caps the resampling worker pool. Zero means 4, matching the
	// repetition-level parallelism the rest of the engine assumes.
	Workers int

	// MinSampleSize below which the distribution is reported empty.
	// Zero means sample.DefaultMinSampleSize.
	MinSampleSize int
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return 4
	}
	return c.Workers
}

func (c Config) minSize() int {
	if c.MinSampleSize <= 0 {
		return sample.DefaultMinSampleSize
	}
	return c.MinSampleSize
}

// Distribution is an immutable resampling result owned by the caller.
type Distribution struct {
	Values    []float64 `json:"values"`
	Mode      Mode      `json:"mode"`
	Requested int       `json:"requested"`
	Dropped   int       `json:"dropped"`
	Empty     bool      `json:"empty"`
	Seeded    bool      `json:"seeded"`
}

// Resampler draws repeated samples and evaluates a statistic on each.
type Resampler struct {
	rng ports.RNGPort
}

// New creates a resampler drawing randomness from the given port.
func New(rng ports.RNGPort) *Resampler {
	return &Resampler{rng: rng}
}

// Run produces a Distribution of cfg.Repetitions statistic values. The input
// sample is cleaned first; if it falls below the minimum usable size the
// returned distribution is flagged Empty and carries zero repetitions.
// Configuration problems return an error before any draw happens.
func (r *Resampler) Run(ctx context.Context, s sample.PairedSample, stat Statistic, cfg Config) (Distribution, error) {
	if cfg.Repetitions <= 0 {
		return Distribution{}, core.ErrNegativeRepetitions
	}
	if stat == nil {
		return Distribution{}, core.NewConfigurationError("statistic", "must not be nil")
	}

	clean, n := s.Clean()
	dist := Distribution{
		Mode:      cfg.Mode,
		Requested: cfg.Repetitions,
		Seeded:    cfg.Seed != nil,
	}
	if n < cfg.minSize() {
		dist.Empty = true
		return dist, nil
	}

	workers := cfg.workers()
	if cfg.Repetitions < workers {
		workers = 1
	}

	// Repetition slots are assigned to workers in contiguous blocks and each
	// worker owns a derived stream, so results are reproducible for a given
	// seed regardless of scheduling.
	values := make([]float64, cfg.Repetitions)
	valid := make([]bool, cfg.Repetitions)

	g, gctx := errgroup.WithContext(ctx)
	block := (cfg.Repetitions + workers - 1) / workers
	for w := 0; w < workers; w++ {
		w := w
		lo := w * block
		hi := lo + block
		if hi > cfg.Repetitions {
			hi = cfg.Repetitions
		}
		if lo >= hi {
			continue
		}
		g.Go(func() error {
			gen, err := r.workerStream(gctx, cfg, w)
			if err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				draw := r.draw(clean, cfg.Mode, gen)
				if v, ok := stat(draw); ok {
					values[i] = v
					valid[i] = true
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Distribution{}, err
	}

	dist.Values = make([]float64, 0, cfg.Repetitions)
	for i, ok := range valid {
		if ok {
			dist.Values = append(dist.Values, values[i])
		} else {
			dist.Dropped++
		}
	}
	if len(dist.Values) == 0 {
		dist.Empty = true
	}
	return dist, nil
}

func (r *Resampler) workerStream(ctx context.Context, cfg Config, worker int) (*rand.Rand, error) {
	if cfg.Seed == nil {
		return r.rng.Entropy(ctx)
	}
	return r.rng.WorkerStream(ctx, streamName(cfg.Mode), *cfg.Seed, worker)
}

func streamName(m Mode) string {
	if m == ModePermutation {
		return "resample-permutation"
	}
	return "resample-bootstrap"
}

func (r *Resampler) draw(s sample.PairedSample, mode Mode, gen *rand.Rand) sample.PairedSample {
	if mode == ModePermutation {
		return permute(s, gen)
	}
	return bootstrap(s, gen)
}

func bootstrap(s sample.PairedSample, gen *rand.Rand) sample.PairedSample {
	if s.Paired {
		n := len(s.A)
		a := make([]float64, n)
		b := make([]float64, n)
		for i := 0; i < n; i++ {
			j := gen.Intn(n)
			a[i] = s.A[j]
			b[i] = s.B[j]
		}
		return sample.PairedSample{Metric: s.Metric, A: a, B: b, Paired: true}
	}

	a := resampleWithReplacement(s.A, gen)
	b := resampleWithReplacement(s.B, gen)
	return sample.PairedSample{Metric: s.Metric, A: a, B: b, Paired: false}
}

func resampleWithReplacement(data []float64, gen *rand.Rand) []float64 {
	out := make([]float64, len(data))
	for i := range out {
		out[i] = data[gen.Intn(len(data))]
	}
	return out
}

func permute(s sample.PairedSample, gen *rand.Rand) sample.PairedSample {
	if s.Paired {
		n := len(s.A)
		a := make([]float64, n)
		b := make([]float64, n)
		for i := 0; i < n; i++ {
			if gen.Intn(2) == 0 {
				a[i], b[i] = s.A[i], s.B[i]
			} else {
				a[i], b[i] = s.B[i], s.A[i]
			}
		}
		return sample.PairedSample{Metric: s.Metric, A: a, B: b, Paired: true}
	}

	pool := make([]float64, 0, len(s.A)+len(s.B))
	pool = append(pool, s.A...)
	pool = append(pool, s.B...)
	// Fisher-Yates
	for i := len(pool) - 1; i > 0; i-- {
		j := gen.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	a := make([]float64, len(s.A))
	b := make([]float64, len(s.B))
	copy(a, pool[:len(s.A)])
	copy(b, pool[len(s.A):])
	return sample.PairedSample{Metric: s.Metric, A: a, B: b, Paired: false}
}
