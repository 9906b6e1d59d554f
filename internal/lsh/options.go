package lsh

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Options configures an Encoder. All values are fixed at construction.
type Options struct {
	Decimals      int    // decimal places kept by truncation
	ShingleMin    int    // smallest shingle window
	ShingleMax    int    // largest shingle window
	HashCount     int    // MinHash functions
	BucketCount   int    // bands per hash function
	HashSetSize   int    // values kept per band
	PositionStart int    // leading characters stripped by the position tagger
	Rotation      *bool  // nil means BucketCount > 1
	Seed          uint64 // hash family seed
}

// DefaultOptions mirrors the defaults of the lexical LSH indexer.
func DefaultOptions() Options {
	return Options{
		Decimals:    1,
		ShingleMin:  2,
		ShingleMax:  2,
		HashCount:   1,
		BucketCount: 300,
		HashSetSize: 1,
	}
}

// RotationEnabled resolves the effective rotation flag.
func (o Options) RotationEnabled() bool {
	if o.Rotation != nil {
		return *o.Rotation
	}
	return o.BucketCount > 1
}

// Validate reports every configuration error at once.
func (o Options) Validate() error {
	var errs []error
	if o.Decimals < 1 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidDecimals, o.Decimals))
	}
	if o.PositionStart < 0 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidPositionStart, o.PositionStart))
	}
	if o.ShingleMin < 1 || o.ShingleMin > o.ShingleMax {
		errs = append(errs, fmt.Errorf("%w, got min=%d max=%d", ErrInvalidShingleSize, o.ShingleMin, o.ShingleMax))
	}
	if err := o.minHashConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// String renders every option that changes the produced tokens, with rotation resolved.
func (o Options) String() string {
	return fmt.Sprintf("decimals=%d shingles=%d-%d hashes=%d buckets=%d set=%d start=%d rotation=%t seed=%d",
		o.Decimals, o.ShingleMin, o.ShingleMax, o.HashCount, o.BucketCount, o.HashSetSize,
		o.PositionStart, o.RotationEnabled(), o.Seed)
}

// Digest identifies the token space of these options. Fingerprints are only comparable
// when their digests match.
func (o Options) Digest() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(o.String()))
}

func (o Options) minHashConfig() MinHashConfig {
	return MinHashConfig{
		HashCount:   o.HashCount,
		BucketCount: o.BucketCount,
		HashSetSize: o.HashSetSize,
		Rotation:    o.RotationEnabled(),
		Seed:        o.Seed,
	}
}
