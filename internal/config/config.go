package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/depotkit/depot/internal/models"
)

// Config holds all configuration for depot.
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	LinkTable LinkTableConfig `mapstructure:"linktable"`
	Index     IndexConfig     `mapstructure:"index"`
	Content   ContentConfig   `mapstructure:"content"`
	ID        IDConfig        `mapstructure:"id"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// StorageConfig selects the document store backend.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // sqlite | memory
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LinkTableConfig selects the link table backend.
type LinkTableConfig struct {
	Backend string      `mapstructure:"backend"` // sqlite | neo4j | memory
	Neo4j   Neo4jConfig `mapstructure:"neo4j"`
}

// Neo4jConfig holds Neo4j connection settings.
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// String returns a safe representation with the password masked.
func (c Neo4jConfig) String() string {
	masked := "***"
	if c.Password == "" {
		masked = ""
	}
	return fmt.Sprintf("Neo4jConfig{URI:%s, User:%s, Password:%s, Database:%s}", c.URI, c.User, masked, c.Database)
}

// IndexConfig selects the projection store backend.
type IndexConfig struct {
	Backend string      `mapstructure:"backend"` // redis | memory
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ContentConfig holds derivate payload store settings.
type ContentConfig struct {
	Dir string `mapstructure:"dir"`
}

// IDConfig holds identifier settings.
type IDConfig struct {
	NumberWidth int      `mapstructure:"number_width"`
	Types       []string `mapstructure:"types"`
}

// CacheConfig bounds the parsed-document cache.
type CacheConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.sqlite_path", filepath.Join(homeDir(), ".depot", "depot.db"))

	v.SetDefault("linktable.backend", "sqlite")
	v.SetDefault("linktable.neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("linktable.neo4j.user", "neo4j")
	v.SetDefault("linktable.neo4j.database", "neo4j")

	v.SetDefault("index.backend", "redis")
	v.SetDefault("index.redis.addr", "localhost:6379")
	v.SetDefault("index.redis.db", 0)

	v.SetDefault("content.dir", filepath.Join(homeDir(), ".depot", "content"))

	v.SetDefault("id.number_width", models.DefaultNumberWidth)
	v.SetDefault("id.types", []string{"document", "person", "institution", models.TypeDerivate})

	v.SetDefault("cache.capacity", 512)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".depot"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("DEPOT")
	v.AutomaticEnv()

	_ = v.BindEnv("storage.sqlite_path", "DEPOT_STORAGE_SQLITE_PATH")
	_ = v.BindEnv("linktable.neo4j.uri", "DEPOT_NEO4J_URI")
	_ = v.BindEnv("linktable.neo4j.password", "DEPOT_NEO4J_PASSWORD")
	_ = v.BindEnv("index.redis.addr", "DEPOT_REDIS_ADDR")
	_ = v.BindEnv("index.redis.password", "DEPOT_REDIS_PASSWORD")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path must not be empty")
		}
	case "memory":
	default:
		return fmt.Errorf("storage.backend must be sqlite or memory, got %q", c.Storage.Backend)
	}
	switch c.LinkTable.Backend {
	case "sqlite", "memory":
	case "neo4j":
		if c.LinkTable.Neo4j.URI == "" {
			return fmt.Errorf("linktable.neo4j.uri must not be empty")
		}
	default:
		return fmt.Errorf("linktable.backend must be sqlite, neo4j or memory, got %q", c.LinkTable.Backend)
	}
	switch c.Index.Backend {
	case "memory":
	case "redis":
		if c.Index.Redis.Addr == "" {
			return fmt.Errorf("index.redis.addr must not be empty")
		}
	default:
		return fmt.Errorf("index.backend must be redis or memory, got %q", c.Index.Backend)
	}
	if c.ID.NumberWidth < 1 || c.ID.NumberWidth > 32 {
		return fmt.Errorf("id.number_width must be between 1 and 32")
	}
	if len(c.ID.Types) == 0 {
		return fmt.Errorf("id.types must name at least one type")
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be greater than 0")
	}
	return nil
}

// Apply installs the identifier settings into the models registry.
func (c *Config) Apply() {
	models.SetNumberWidth(c.ID.NumberWidth)
	for _, typeID := range c.ID.Types {
		models.RegisterType(typeID)
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
