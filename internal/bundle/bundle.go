// Package bundle reads and writes portable model files. A bundle carries a
// dataset together with its selected K, so importing it skips model
// selection.
package bundle

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/abhisek/strandwise/internal/strand"
)

// Version is the current bundle format.
const Version = 1

// ErrVersion is returned for bundles written by an unknown format version.
var ErrVersion = errors.New("unsupported bundle version")

// Record is one labelled sample. Labels are stored as plain strings and
// checked on decode.
type Record struct {
	Scores strand.Scores `msgpack:"scores"`
	Strand string        `msgpack:"strand"`
}

// Bundle is a dataset with its chosen model.
type Bundle struct {
	Version      int      `msgpack:"version"`
	Name         string   `msgpack:"name"`
	Description  string   `msgpack:"description"`
	ChosenK      int      `msgpack:"chosen_k"`
	MeanAccuracy float64  `msgpack:"mean_accuracy"`
	Fallback     bool     `msgpack:"fallback"`
	Seed         int64    `msgpack:"seed"`
	Folds        int      `msgpack:"folds"`
	Records      []Record `msgpack:"records"`
}

// New builds a bundle from samples.
func New(name, description string, samples []strand.Sample) *Bundle {
	b := &Bundle{
		Version:     Version,
		Name:        name,
		Description: description,
		Records:     make([]Record, len(samples)),
	}
	for i, s := range samples {
		b.Records[i] = Record{Scores: s.Scores(), Strand: string(s.Label())}
	}
	return b
}

// Samples converts the records back into validated samples.
func (b *Bundle) Samples() ([]strand.Sample, error) {
	out := make([]strand.Sample, len(b.Records))
	for i, r := range b.Records {
		l, err := strand.ParseLabel(r.Strand)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		s, err := strand.NewSample(r.Scores, l)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// Encode writes b to w.
func Encode(w io.Writer, b *Bundle) error {
	if b.Version == 0 {
		b.Version = Version
	}
	if err := msgpack.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

// Decode reads a bundle from r and validates it.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, b.Version)
	}
	if b.Name == "" {
		return nil, errors.New("bundle has no name")
	}
	if _, err := b.Samples(); err != nil {
		return nil, fmt.Errorf("bundle %q: %w", b.Name, err)
	}
	if b.ChosenK < 1 {
		return nil, fmt.Errorf("bundle %q: chosen K %d must be at least 1", b.Name, b.ChosenK)
	}
	return &b, nil
}
