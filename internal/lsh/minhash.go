package lsh

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// MaxBucketCount bounds the number of bands per hash function. A band index is derived
// from the top 32 bits of a hash value, so the product must fit in 64 bits.
const MaxBucketCount = 1 << 20

// MinHashConfig configures the banded MinHash stage.
type MinHashConfig struct {
	HashCount   int    // independent hash functions
	BucketCount int    // bands per hash function
	HashSetSize int    // smallest values kept per band
	Rotation    bool   // empty bands borrow the values of the next non-empty band
	Seed        uint64 // seed of the hash family
}

// Validate reports every configuration error at once.
func (c MinHashConfig) Validate() error {
	var errs []error
	if c.HashCount <= 0 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidHashCount, c.HashCount))
	}
	if c.BucketCount <= 0 || c.BucketCount > MaxBucketCount {
		errs = append(errs, fmt.Errorf("%w (max %d), got %d", ErrInvalidBucketCount, MaxBucketCount, c.BucketCount))
	}
	if c.HashSetSize <= 0 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInvalidHashSetSize, c.HashSetSize))
	}
	return errors.Join(errs...)
}

// MinHasher computes a banded k-minimum-values sketch over a shingle set and renders
// every retained value as a fingerprint token.
//
// Hash function i maps a shingle s to mix64(xxhash(s) ^ seed_i). Its 64-bit range is split
// into BucketCount equal-width bands by the top 32 bits, and each band keeps its
// HashSetSize smallest distinct values.
type MinHasher struct {
	cfg   MinHashConfig
	seeds []uint64
}

// NewMinHasher validates cfg and derives the per-function seeds.
func NewMinHasher(cfg MinHashConfig) (*MinHasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seeds := make([]uint64, cfg.HashCount)
	for i := range seeds {
		seeds[i] = mix64(cfg.Seed + golden*uint64(i+1))
	}
	return &MinHasher{cfg: cfg, seeds: seeds}, nil
}

// Config returns the configuration the hasher was built with.
func (m *MinHasher) Config() MinHashConfig { return m.cfg }

// MaxTokens is the upper bound on the number of tokens Fingerprint can return.
func (m *MinHasher) MaxTokens() int {
	return m.cfg.HashCount * m.cfg.BucketCount * m.cfg.HashSetSize
}

// Hash applies hash function i to s.
func (m *MinHasher) Hash(i int, s string) uint64 {
	return mix64(xxhash.Sum64String(s) ^ m.seeds[i])
}

// Band returns the band a hash value falls into.
func (m *MinHasher) Band(v uint64) int {
	return int(((v >> 32) * uint64(m.cfg.BucketCount)) >> 32)
}

// Sketch returns, for every hash function and band, the retained values in ascending order.
// Rotation is applied when configured. An empty set yields nil.
func (m *MinHasher) Sketch(set []string) [][][]uint64 {
	if len(set) == 0 {
		return nil
	}

	base := make([]uint64, len(set))
	for j, s := range set {
		base[j] = xxhash.Sum64String(s)
	}

	sketch := make([][][]uint64, m.cfg.HashCount)
	for i, seed := range m.seeds {
		bands := make([][]uint64, m.cfg.BucketCount)
		for _, b := range base {
			v := mix64(b ^ seed)
			band := m.Band(v)
			bands[band] = m.keep(bands[band], v)
		}
		if m.cfg.Rotation {
			rotate(bands)
		}
		sketch[i] = bands
	}
	return sketch
}

// Fingerprint returns one token per retained (hash, band, value) triple.
func (m *MinHasher) Fingerprint(set []string) []string {
	sketch := m.Sketch(set)
	if sketch == nil {
		return nil
	}

	out := make([]string, 0, len(set))
	for i, bands := range sketch {
		for band, values := range bands {
			for _, v := range values {
				out = append(out, m.token(i, band, v))
			}
		}
	}
	return out
}

// keep inserts v into the sorted slice vals, bounded by HashSetSize. Duplicates are dropped.
func (m *MinHasher) keep(vals []uint64, v uint64) []uint64 {
	if len(vals) == m.cfg.HashSetSize && v >= vals[len(vals)-1] {
		return vals
	}
	pos, found := slices.BinarySearch(vals, v)
	if found {
		return vals
	}
	if len(vals) == m.cfg.HashSetSize {
		vals = vals[:len(vals)-1]
	}
	return slices.Insert(vals, pos, v)
}

// token renders a retained value as "[h{i}_][b{band}_]{16 hex digits}".
func (m *MinHasher) token(i, band int, v uint64) string {
	buf := make([]byte, 0, 32)
	if m.cfg.HashCount > 1 {
		buf = append(buf, 'h')
		buf = strconv.AppendInt(buf, int64(i), 10)
		buf = append(buf, '_')
	}
	if m.cfg.BucketCount > 1 {
		buf = append(buf, 'b')
		buf = strconv.AppendInt(buf, int64(band), 10)
		buf = append(buf, '_')
	}
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], v)
	return string(hex.AppendEncode(buf, raw[:]))
}

// rotate fills every empty band with the values of the next non-empty band, wrapping around.
func rotate(bands [][]uint64) {
	n := len(bands)
	for j := range bands {
		if len(bands[j]) > 0 {
			continue
		}
		for k := 1; k < n; k++ {
			if next := bands[(j+k)%n]; len(next) > 0 {
				bands[j] = next
				break
			}
		}
	}
}

const golden = 0x9e3779b97f4a7c15

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	z ^= z >> 31
	return z
}
