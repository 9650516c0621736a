package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SNOWFLAKE_PASSWORD", "hunter2")

	path := writeConfig(t, `
datasource:
  type: snowflake
  snowflake:
    account: xy12345
    user: profiler
    warehouse: WH_SMALL
    database: ANALYTICS
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000), cfg.Discovery.SampleSize)
	assert.Equal(t, 0.98, cfg.Discovery.PKUniquenessThreshold)
	assert.Equal(t, 25, cfg.Discovery.DistinctSampleCap)
	assert.Contains(t, cfg.Discovery.DescriptiveKeywords, "description")
	assert.Contains(t, cfg.Discovery.IdentifierSuffixes, "_key")
	assert.Equal(t, float64(10), cfg.Discovery.Weights.OrphanedFK)
	assert.Equal(t, 15, cfg.Cache.FreshnessWindowMinutes)
	assert.Less(t, cfg.Cache.FreshnessWindow(), cfg.Cache.AbsoluteTTL())
	assert.Equal(t, "PUBLIC", cfg.Datasource.Snowflake.Schema)
}

func TestLoadMissingCredentialsIsFatal(t *testing.T) {
	t.Setenv("SNOWFLAKE_PASSWORD", "")

	path := writeConfig(t, `
datasource:
  type: snowflake
  snowflake:
    account: xy12345
    user: profiler
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNOWFLAKE_PASSWORD")
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := &Config{}
	cfg.Datasource.Type = "postgres"
	cfg.Datasource.Postgres = PostgresConfig{User: "u", Database: "d"}
	cfg.Discovery = DefaultDiscovery()
	cfg.Cache = CacheConfig{FreshnessWindowMinutes: 15, AbsoluteTTLMinutes: 240}

	require.NoError(t, cfg.Validate())

	cfg.Discovery.PKUniquenessThreshold = 1.5
	require.Error(t, cfg.Validate())

	cfg.Discovery = DefaultDiscovery()
	cfg.Discovery.SampleSize = 0
	require.Error(t, cfg.Validate())

	cfg.Discovery = DefaultDiscovery()
	cfg.Cache.FreshnessWindowMinutes = 999
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownDatasourceType(t *testing.T) {
	cfg := &Config{}
	cfg.Datasource.Type = "oracle"
	cfg.Discovery = DefaultDiscovery()
	require.Error(t, cfg.Validate())
}

func TestPostgresConnectionString(t *testing.T) {
	pg := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=d sslmode=disable", pg.ConnectionString())
}
