package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depotkit/depot/internal/models"
)

func validConfig() *Config {
	return &Config{
		Storage:   StorageConfig{Backend: "memory"},
		LinkTable: LinkTableConfig{Backend: "memory"},
		Index:     IndexConfig{Backend: "memory"},
		Content:   ContentConfig{Dir: "/tmp/depot-content"},
		ID:        IDConfig{NumberWidth: models.DefaultNumberWidth, Types: []string{"document"}},
		Cache:     CacheConfig{Capacity: 64},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Storage.Backend = "sqlite"; c.Storage.SQLitePath = "" }},
		{"unknown linktable backend", func(c *Config) { c.LinkTable.Backend = "dgraph" }},
		{"neo4j without uri", func(c *Config) { c.LinkTable.Backend = "neo4j"; c.LinkTable.Neo4j.URI = "" }},
		{"unknown index backend", func(c *Config) { c.Index.Backend = "solr" }},
		{"redis without addr", func(c *Config) { c.Index.Backend = "redis"; c.Index.Redis.Addr = "" }},
		{"zero number width", func(c *Config) { c.ID.NumberWidth = 0 }},
		{"oversized number width", func(c *Config) { c.ID.NumberWidth = 33 }},
		{"no types", func(c *Config) { c.ID.Types = nil }},
		{"zero cache capacity", func(c *Config) { c.Cache.Capacity = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.SQLitePath)
	assert.Equal(t, "sqlite", cfg.LinkTable.Backend)
	assert.Equal(t, "bolt://localhost:7687", cfg.LinkTable.Neo4j.URI)
	assert.Equal(t, "redis", cfg.Index.Backend)
	assert.Equal(t, "localhost:6379", cfg.Index.Redis.Addr)
	assert.Equal(t, models.DefaultNumberWidth, cfg.ID.NumberWidth)
	assert.Contains(t, cfg.ID.Types, models.TypeDerivate)
	assert.Equal(t, 512, cfg.Cache.Capacity)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEPOT_STORAGE_SQLITE_PATH", "/var/lib/depot/depot.db")
	t.Setenv("DEPOT_REDIS_ADDR", "redis.internal:6380")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/depot/depot.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "redis.internal:6380", cfg.Index.Redis.Addr)
}

func TestApply_RegistersTypes(t *testing.T) {
	cfg := validConfig()
	cfg.ID.Types = []string{"document", "specimen"}
	cfg.Apply()

	assert.True(t, models.TypeRegistered("specimen"))
	assert.Equal(t, models.DefaultNumberWidth, models.NumberWidth())
}

func TestNeo4jConfig_StringMasksPassword(t *testing.T) {
	c := Neo4jConfig{URI: "bolt://db:7687", User: "neo4j", Password: "hunter2", Database: "neo4j"}
	s := c.String()
	assert.NotContains(t, s, "hunter2")
	assert.Contains(t, s, "bolt://db:7687")
}
