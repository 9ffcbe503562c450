package ports

import (
	"context"

	"sefval/domain/sample"
)

// SampleSource supplies paired samples from an external data layer
// (workbooks, tables). Sources deliver sequences already extractable by
// group key; missing-value filtering happens inside the engine.
type SampleSource interface {
	// Samples returns one PairedSample per metric available in the source.
	Samples(ctx context.Context) ([]sample.PairedSample, error)
}
