package lexlsh

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// EncodingOptions configures the fingerprint encoder. Zero fields take the defaults
// (1 decimal, bigram shingles, 1 hash function, 300 buckets, 1 value per bucket).
// Every writer and reader of an index must use the same options.
type EncodingOptions struct {
	Decimals      int
	ShingleMin    int
	ShingleMax    int
	HashCount     int
	BucketCount   int
	HashSetSize   int
	PositionStart int
	// Rotation defaults to on when BucketCount > 1.
	Rotation *bool
	Seed     uint64
}

func (o EncodingOptions) lsh() lsh.Options {
	def := lsh.DefaultOptions()
	opts := lsh.Options{
		Decimals:      o.Decimals,
		ShingleMin:    o.ShingleMin,
		ShingleMax:    o.ShingleMax,
		HashCount:     o.HashCount,
		BucketCount:   o.BucketCount,
		HashSetSize:   o.HashSetSize,
		PositionStart: o.PositionStart,
		Rotation:      o.Rotation,
		Seed:          o.Seed,
	}
	if opts.Decimals == 0 {
		opts.Decimals = def.Decimals
	}
	if opts.ShingleMin == 0 {
		opts.ShingleMin = def.ShingleMin
	}
	if opts.ShingleMax == 0 {
		opts.ShingleMax = max(def.ShingleMax, opts.ShingleMin)
	}
	if opts.HashCount == 0 {
		opts.HashCount = def.HashCount
	}
	if opts.BucketCount == 0 {
		opts.BucketCount = def.BucketCount
	}
	if opts.HashSetSize == 0 {
		opts.HashSetSize = def.HashSetSize
	}
	return opts
}

type clientConfig struct {
	driver     string // "valkey" or "redis"
	addrs      []string
	password   string
	standalone bool

	embedder Embedder
	encoding EncodingOptions

	keyPrefix           string
	maxBatchSize        int
	workers             int
	candidateMultiplier int
	maxTagCandidates    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
// Valkey has no TEXT fields, so searches use tag mode.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Valkey/Redis instances (not managed by cluster operator).
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithEncoding overrides the fingerprint encoder settings.
func WithEncoding(o EncodingOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.encoding = o
	})
}

// WithKeyPrefix namespaces every key and the index name. Default: "lexlsh:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMaxBatchSize sets the maximum number of items per batch operation.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithWorkers bounds parallel fingerprinting in batch upserts. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithCandidateMultiplier sets how many index candidates are fetched per requested
// result before overlap ranking. Default: 4.
func WithCandidateMultiplier(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateMultiplier = n
	})
}

// WithMaxTagCandidates caps how many TAG-mode hits are read, page by page, before overlap
// ranking. Default: 1000.
func WithMaxTagCandidates(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxTagCandidates = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
