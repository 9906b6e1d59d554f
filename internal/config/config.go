package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/lexlsh/internal/lsh"
)

// Config holds the lexlsh service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Encoding  EncodingConfig  `yaml:"encoding"`
	Search    SearchConfig    `yaml:"search"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Standalone       bool     `yaml:"standalone"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EncodingConfig holds fingerprint encoder settings. Zero values take the encoder defaults.
type EncodingConfig struct {
	Decimals      int    `yaml:"decimals"`
	ShingleMin    int    `yaml:"shingle_min"`
	ShingleMax    int    `yaml:"shingle_max"`
	HashCount     int    `yaml:"hash_count"`
	BucketCount   int    `yaml:"bucket_count"`
	HashSetSize   int    `yaml:"hash_set_size"`
	PositionStart int    `yaml:"position_start"`
	Rotation      *bool  `yaml:"rotation"` // unset: on when bucket_count > 1
	Seed          uint64 `yaml:"seed"`
}

// SearchConfig holds query and batch limits.
type SearchConfig struct {
	DefaultLimit        int `yaml:"default_limit"`
	MaxLimit            int `yaml:"max_limit"`
	CandidateMultiplier int `yaml:"candidate_multiplier"`
	MaxTagCandidates    int `yaml:"max_tag_candidates"` // TAG hits paged in before ranking
	MaxBatchSize        int `yaml:"max_batch_size"`
	Workers             int `yaml:"workers"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds the optional text embedding provider. Text input is disabled
// when BaseURL is empty.
type EmbeddingConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// Enabled reports whether a provider is configured.
func (e EmbeddingConfig) Enabled() bool {
	return e.BaseURL != ""
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expanding ${VAR} references, then applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	def := lsh.DefaultOptions()
	if c.Encoding.Decimals == 0 {
		c.Encoding.Decimals = def.Decimals
	}
	if c.Encoding.ShingleMin == 0 {
		c.Encoding.ShingleMin = def.ShingleMin
	}
	if c.Encoding.ShingleMax == 0 {
		c.Encoding.ShingleMax = max(def.ShingleMax, c.Encoding.ShingleMin)
	}
	if c.Encoding.HashCount == 0 {
		c.Encoding.HashCount = def.HashCount
	}
	if c.Encoding.BucketCount == 0 {
		c.Encoding.BucketCount = def.BucketCount
	}
	if c.Encoding.HashSetSize == 0 {
		c.Encoding.HashSetSize = def.HashSetSize
	}

	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.CandidateMultiplier <= 0 {
		c.Search.CandidateMultiplier = 4
	}
	if c.Search.MaxTagCandidates <= 0 {
		c.Search.MaxTagCandidates = 1000
	}
	if c.Search.MaxBatchSize <= 0 {
		c.Search.MaxBatchSize = 100
	}
	if c.Search.Workers <= 0 {
		c.Search.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "lexlsh:"
	}
	if c.Embedding.Enabled() && c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
}

// EncoderOptions converts the encoding section to encoder options.
func (c *Config) EncoderOptions() lsh.Options {
	return lsh.Options{
		Decimals:      c.Encoding.Decimals,
		ShingleMin:    c.Encoding.ShingleMin,
		ShingleMax:    c.Encoding.ShingleMax,
		HashCount:     c.Encoding.HashCount,
		BucketCount:   c.Encoding.BucketCount,
		HashSetSize:   c.Encoding.HashSetSize,
		PositionStart: c.Encoding.PositionStart,
		Rotation:      c.Encoding.Rotation,
		Seed:          c.Encoding.Seed,
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if err := c.EncoderOptions().Validate(); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if window := c.Search.MaxLimit * c.Search.CandidateMultiplier; c.Search.MaxTagCandidates < window {
		return fmt.Errorf("search.max_tag_candidates (%d) is below max_limit*candidate_multiplier (%d)",
			c.Search.MaxTagCandidates, window)
	}
	if c.Embedding.Enabled() && c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
