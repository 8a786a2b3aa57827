// Package config provides layered YAML + environment configuration for
// the memory store and retrieval engine, following the same precedence
// order the server has always used: built-in defaults, then a user file,
// then a project file, then environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a devmind process.
type Config struct {
	Version      int                `yaml:"version" json:"version"`
	Database     DatabaseConfig     `yaml:"database" json:"database"`
	Ingestion    IngestionConfig    `yaml:"ingestion" json:"ingestion"`
	VectorSearch VectorSearchConfig `yaml:"vector_search" json:"vector_search"`
	Search       SearchConfig       `yaml:"search" json:"search"`
	Performance  PerformanceConfig  `yaml:"performance" json:"performance"`
	Server       ServerConfig       `yaml:"server" json:"server"`
}

// DatabaseConfig controls where and how the SQLite-backed store opens.
type DatabaseConfig struct {
	// Path is database_path from the tool surface: defaults to
	// <home>/.devmind/memory.db, expanded at load time.
	Path string `yaml:"path" json:"path"`
}

// IngestionConfig governs record_context's auto-enrichment and
// classification behavior.
type IngestionConfig struct {
	// The fields below are loaded, merged and (where ranged) validated like
	// the rest of the configuration; no ingestion or indexing code reads
	// them, so they do not change how contexts are stored or scored.

	// QualityThreshold is quality_threshold, in [0,1].
	QualityThreshold float64 `yaml:"quality_threshold" json:"quality_threshold"`

	// AutoSaveIntervalSeconds is auto_save_interval, in seconds.
	AutoSaveIntervalSeconds int `yaml:"auto_save_interval_seconds" json:"auto_save_interval_seconds"`

	// IgnoredPatterns is ignored_patterns, a list of path globs.
	IgnoredPatterns []string `yaml:"ignored_patterns" json:"ignored_patterns"`

	// IncludedExtensions is included_extensions; empty means none listed.
	IncludedExtensions []string `yaml:"included_extensions" json:"included_extensions"`
}

// VectorSearchConfig mirrors the vector_search block of the tool surface.
type VectorSearchConfig struct {
	Enabled              bool    `yaml:"enabled" json:"enabled"`
	ModelName            string  `yaml:"model_name" json:"model_name"`
	Dimensions           int     `yaml:"dimensions" json:"dimensions"`
	SimilarityThreshold  float64 `yaml:"similarity_threshold" json:"similarity_threshold"`
	HybridWeight         float64 `yaml:"hybrid_weight" json:"hybrid_weight"`
	CacheEmbeddings      bool    `yaml:"cache_embeddings" json:"cache_embeddings"`
	EmbeddingCacheSize   int     `yaml:"embedding_cache_size" json:"embedding_cache_size"`
}

// SearchConfig picks the keyword-index backend and its search tuning.
type SearchConfig struct {
	// Backend names a keyword-index backend, "sqlite" (FTS5, default) or
	// "bleve"; Validate rejects other values. No store or search code
	// reads it: SearchKeyword does not go through a keyword index.
	Backend      string `yaml:"backend" json:"backend"`
	MaxResults   int    `yaml:"max_results" json:"max_results"`
	DuplicateTopK int   `yaml:"duplicate_top_k" json:"duplicate_top_k"`
}

// PerformanceConfig is ambient sizing, never user-tool-visible.
type PerformanceConfig struct {
	SQLiteCacheMB int `yaml:"sqlite_cache_mb" json:"sqlite_cache_mb"`
	IndexWorkers  int `yaml:"index_workers" json:"index_workers"`
}

// ServerConfig controls transport and logging for cmd/devmind.
type ServerConfig struct {
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

var defaultIgnoredPatterns = []string{
	".git/", "node_modules/", "vendor/", "dist/", "build/", ".devmind/",
}

// NewConfig returns the built-in defaults every layer merges onto.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Database: DatabaseConfig{
			Path: defaultDatabasePath(),
		},
		Ingestion: IngestionConfig{
			QualityThreshold:        0.3,
			AutoSaveIntervalSeconds: 300,
			IgnoredPatterns:         append([]string{}, defaultIgnoredPatterns...),
			IncludedExtensions:      nil,
		},
		VectorSearch: VectorSearchConfig{
			Enabled:            true,
			ModelName:          "static",
			Dimensions:         384,
			SimilarityThreshold: 0.75,
			HybridWeight:       0.6,
			CacheEmbeddings:    true,
			EmbeddingCacheSize: 2000,
		},
		Search: SearchConfig{
			Backend:       "sqlite",
			MaxResults:    20,
			DuplicateTopK: 5,
		},
		Performance: PerformanceConfig{
			SQLiteCacheMB: 64,
			IndexWorkers:  runtime.NumCPU(),
		},
		Server: ServerConfig{
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// defaultDatabasePath returns <home>/.devmind/memory.db.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".devmind", "memory.db")
	}
	return filepath.Join(home, ".devmind", "memory.db")
}

// GetUserConfigPath returns the user/global configuration file path,
// honoring XDG_CONFIG_HOME like the rest of the XDG-aware ecosystem.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "devmind", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "devmind", "config.yaml")
	}
	return filepath.Join(home, ".config", "devmind", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user config file.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether a user config file is present.
func UserConfigExists() bool {
	_, err := os.Stat(GetUserConfigPath())
	return err == nil
}

func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}
	return &cfg, nil
}

// Load builds the effective configuration for a project directory:
// defaults, then the user file, then a project file (.devmind.yaml or
// .devmind.yml), then environment variables, in increasing priority.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load .devmind.yaml, then .devmind.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".devmind.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}
	ymlPath := filepath.Join(dir, ".devmind.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero fields from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Database.Path != "" {
		c.Database.Path = other.Database.Path
	}

	if other.Ingestion.QualityThreshold != 0 {
		c.Ingestion.QualityThreshold = other.Ingestion.QualityThreshold
	}
	if other.Ingestion.AutoSaveIntervalSeconds != 0 {
		c.Ingestion.AutoSaveIntervalSeconds = other.Ingestion.AutoSaveIntervalSeconds
	}
	if len(other.Ingestion.IgnoredPatterns) > 0 {
		c.Ingestion.IgnoredPatterns = other.Ingestion.IgnoredPatterns
	}
	if len(other.Ingestion.IncludedExtensions) > 0 {
		c.Ingestion.IncludedExtensions = other.Ingestion.IncludedExtensions
	}

	if other.VectorSearch.ModelName != "" {
		c.VectorSearch.ModelName = other.VectorSearch.ModelName
	}
	if other.VectorSearch.Dimensions != 0 {
		c.VectorSearch.Dimensions = other.VectorSearch.Dimensions
	}
	if other.VectorSearch.SimilarityThreshold != 0 {
		c.VectorSearch.SimilarityThreshold = other.VectorSearch.SimilarityThreshold
	}
	if other.VectorSearch.HybridWeight != 0 {
		c.VectorSearch.HybridWeight = other.VectorSearch.HybridWeight
	}
	if other.VectorSearch.EmbeddingCacheSize != 0 {
		c.VectorSearch.EmbeddingCacheSize = other.VectorSearch.EmbeddingCacheSize
	}

	if other.Search.Backend != "" {
		c.Search.Backend = other.Search.Backend
	}
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.DuplicateTopK != 0 {
		c.Search.DuplicateTopK = other.Search.DuplicateTopK
	}

	if other.Performance.SQLiteCacheMB != 0 {
		c.Performance.SQLiteCacheMB = other.Performance.SQLiteCacheMB
	}
	if other.Performance.IndexWorkers != 0 {
		c.Performance.IndexWorkers = other.Performance.IndexWorkers
	}

	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies DEVMIND_* environment variable overrides,
// the highest-priority layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DEVMIND_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DEVMIND_QUALITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.Ingestion.QualityThreshold = f
		}
	}
	if v := os.Getenv("DEVMIND_HYBRID_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.VectorSearch.HybridWeight = f
		}
	}
	if v := os.Getenv("DEVMIND_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			c.VectorSearch.SimilarityThreshold = f
		}
	}
	if v := os.Getenv("DEVMIND_VECTOR_SEARCH_ENABLED"); v != "" {
		c.VectorSearch.Enabled = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("DEVMIND_SEARCH_BACKEND"); v != "" {
		c.Search.Backend = v
	}
	if v := os.Getenv("DEVMIND_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("DEVMIND_TRANSPORT"); v != "" {
		c.Server.Transport = v
	}
}

// Validate rejects configurations that would silently misbehave rather
// than failing fast at startup.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.VectorSearch.HybridWeight < 0 || c.VectorSearch.HybridWeight > 1 {
		return fmt.Errorf("vector_search.hybrid_weight must be between 0 and 1, got %f", c.VectorSearch.HybridWeight)
	}
	if c.VectorSearch.SimilarityThreshold < 0 || c.VectorSearch.SimilarityThreshold > 1 {
		return fmt.Errorf("vector_search.similarity_threshold must be between 0 and 1, got %f", c.VectorSearch.SimilarityThreshold)
	}
	if c.VectorSearch.Dimensions < 0 {
		return fmt.Errorf("vector_search.dimensions must not be negative")
	}
	switch c.Search.Backend {
	case "sqlite", "bleve":
	default:
		return fmt.Errorf("search.backend must be \"sqlite\" or \"bleve\", got %q", c.Search.Backend)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search.max_results must be positive")
	}
	return nil
}

// WriteYAML serializes the configuration to path, creating its directory
// if needed.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadUserConfig loads only the user/global config layer, merged onto the
// built-in defaults.
func LoadUserConfig() (*Config, error) {
	cfg, err := loadUserConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return NewConfig(), nil
	}
	merged := NewConfig()
	merged.mergeWith(cfg)
	return merged, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
