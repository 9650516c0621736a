package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the discovery engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets (passwords)
// must only come from environment variables.
type Config struct {
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	Datasource DatasourceConfig `yaml:"datasource"`
	Cache      CacheConfig      `yaml:"cache"`
	Discovery  DiscoveryConfig  `yaml:"discovery"`
	Retry      RetryConfig      `yaml:"retry"`
}

// DatasourceConfig selects and configures the warehouse connection.
type DatasourceConfig struct {
	// Type is "snowflake" or "postgres".
	Type string `yaml:"type" env:"DATASOURCE_TYPE" env-default:"snowflake"`

	Snowflake SnowflakeConfig `yaml:"snowflake"`
	Postgres  PostgresConfig  `yaml:"postgres"`
}

// SnowflakeConfig holds Snowflake connection settings.
type SnowflakeConfig struct {
	Account   string `yaml:"account" env:"SNOWFLAKE_ACCOUNT" env-default:""`
	User      string `yaml:"user" env:"SNOWFLAKE_USER" env-default:""`
	Password  string `yaml:"-" env:"SNOWFLAKE_PASSWORD"` // Secret - not in YAML
	Warehouse string `yaml:"warehouse" env:"SNOWFLAKE_WAREHOUSE" env-default:""`
	Role      string `yaml:"role" env:"SNOWFLAKE_ROLE" env-default:""`
	Database  string `yaml:"database" env:"SNOWFLAKE_DATABASE" env-default:""`
	Schema    string `yaml:"schema" env:"SNOWFLAKE_SCHEMA" env-default:"PUBLIC"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User     string `yaml:"user" env:"PGUSER" env-default:""`
	Password string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"PGDATABASE" env-default:""`
	SSLMode  string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// CacheConfig configures the pipeline-result cache. A repeat request younger
// than FreshnessWindow is served from cache without re-running; AbsoluteTTL
// is the backend eviction TTL regardless of use.
type CacheConfig struct {
	RedisHost     string `yaml:"redis_host" env:"REDIS_HOST" env-default:""`
	RedisPort     int    `yaml:"redis_port" env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	FreshnessWindowMinutes int `yaml:"freshness_window_minutes" env:"CACHE_FRESHNESS_WINDOW_MINUTES" env-default:"15"`
	AbsoluteTTLMinutes     int `yaml:"absolute_ttl_minutes" env:"CACHE_ABSOLUTE_TTL_MINUTES" env-default:"240"`
}

// FreshnessWindow returns the replay window as a duration.
func (c *CacheConfig) FreshnessWindow() time.Duration {
	return time.Duration(c.FreshnessWindowMinutes) * time.Minute
}

// AbsoluteTTL returns the eviction TTL as a duration.
func (c *CacheConfig) AbsoluteTTL() time.Duration {
	return time.Duration(c.AbsoluteTTLMinutes) * time.Minute
}

// DiscoveryConfig carries every heuristic threshold used by the pipeline so
// none of them live inline in the services.
type DiscoveryConfig struct {
	// SampleSize is the row cap N for sampled reads.
	SampleSize int64 `yaml:"sample_size" env:"DISCOVERY_SAMPLE_SIZE" env-default:"1000000"`
	// PKUniquenessThreshold is the distinct/non-null ratio above which a
	// zero-null column is PK-likely (also used for composite validation).
	PKUniquenessThreshold float64 `yaml:"pk_uniqueness_threshold" env:"DISCOVERY_PK_UNIQUENESS_THRESHOLD" env-default:"0.98"`
	// DistinctSampleCap bounds the distinct-value sample kept for text columns.
	DistinctSampleCap int `yaml:"distinct_sample_cap" env:"DISCOVERY_DISTINCT_SAMPLE_CAP" env-default:"25"`
	// OrphanSampleLimit bounds the anti-join used by the orphaned-FK check.
	OrphanSampleLimit int64 `yaml:"orphan_sample_limit" env:"DISCOVERY_ORPHAN_SAMPLE_LIMIT" env-default:"1000"`

	// DescriptiveKeywords disqualify a column from PK likelihood regardless
	// of its statistics.
	DescriptiveKeywords []string `yaml:"descriptive_keywords" env:"DISCOVERY_DESCRIPTIVE_KEYWORDS" env-separator:"," env-default:"description,comment,note,text,body,message,remark,summary,detail,content"`
	// IdentifierSuffixes mark columns as composite-key candidates.
	IdentifierSuffixes []string `yaml:"identifier_suffixes" env:"DISCOVERY_IDENTIFIER_SUFFIXES" env-separator:"," env-default:"_id,_key"`
	// CompletenessSuffixes mark identifier-like columns for the
	// completeness score; sparsity elsewhere is not penalized.
	CompletenessSuffixes []string `yaml:"completeness_suffixes" env:"DISCOVERY_COMPLETENESS_SUFFIXES" env-separator:"," env-default:"_id,_code,_key"`

	Weights QualityWeights `yaml:"quality_weights"`
}

// QualityWeights are the flat per-issue deductions applied by the scorer.
type QualityWeights struct {
	DuplicatePK        float64 `yaml:"duplicate_pk" env:"QUALITY_WEIGHT_DUPLICATE_PK" env-default:"15"`
	OrphanedFK         float64 `yaml:"orphaned_fk" env:"QUALITY_WEIGHT_ORPHANED_FK" env-default:"10"`
	NumericVarchar     float64 `yaml:"numeric_varchar" env:"QUALITY_WEIGHT_NUMERIC_VARCHAR" env-default:"5"`
	MissingDescription float64 `yaml:"missing_description" env:"QUALITY_WEIGHT_MISSING_DESCRIPTION" env-default:"2"`
}

// RetryConfig configures transient-error retries for backend calls.
type RetryConfig struct {
	MaxRetries     int `yaml:"max_retries" env:"RETRY_MAX_RETRIES" env-default:"3"`
	InitialDelayMs int `yaml:"initial_delay_ms" env:"RETRY_INITIAL_DELAY_MS" env-default:"200"`
	MaxDelayMs     int `yaml:"max_delay_ms" env:"RETRY_MAX_DELAY_MS" env-default:"5000"`
}

// Load reads configuration from path (falling back to environment-only when
// the file does not exist) and validates it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read config from environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the fatal-at-start configuration checks: missing
// credentials abort before any partial run is attempted.
func (c *Config) Validate() error {
	switch c.Datasource.Type {
	case "snowflake":
		sf := c.Datasource.Snowflake
		if sf.Account == "" || sf.User == "" || sf.Password == "" {
			return fmt.Errorf("snowflake datasource requires account, user and SNOWFLAKE_PASSWORD")
		}
	case "postgres":
		pg := c.Datasource.Postgres
		if pg.User == "" || pg.Database == "" {
			return fmt.Errorf("postgres datasource requires user and database")
		}
	default:
		return fmt.Errorf("unsupported datasource type %q", c.Datasource.Type)
	}

	if c.Discovery.SampleSize <= 0 {
		return fmt.Errorf("discovery sample_size must be positive, got %d", c.Discovery.SampleSize)
	}
	if c.Discovery.PKUniquenessThreshold <= 0 || c.Discovery.PKUniquenessThreshold > 1 {
		return fmt.Errorf("pk_uniqueness_threshold must be in (0,1], got %g", c.Discovery.PKUniquenessThreshold)
	}
	if c.Cache.FreshnessWindowMinutes > c.Cache.AbsoluteTTLMinutes {
		return fmt.Errorf("cache freshness window (%dm) exceeds absolute TTL (%dm)",
			c.Cache.FreshnessWindowMinutes, c.Cache.AbsoluteTTLMinutes)
	}
	return nil
}

// DefaultDiscovery returns a DiscoveryConfig with the shipped defaults.
// Used by tests and by callers that construct the pipeline directly.
func DefaultDiscovery() DiscoveryConfig {
	return DiscoveryConfig{
		SampleSize:            1_000_000,
		PKUniquenessThreshold: 0.98,
		DistinctSampleCap:     25,
		OrphanSampleLimit:     1000,
		DescriptiveKeywords: []string{
			"description", "comment", "note", "text", "body",
			"message", "remark", "summary", "detail", "content",
		},
		IdentifierSuffixes:   []string{"_id", "_key"},
		CompletenessSuffixes: []string{"_id", "_code", "_key"},
		Weights: QualityWeights{
			DuplicatePK:        15,
			OrphanedFK:         10,
			NumericVarchar:     5,
			MissingDescription: 2,
		},
	}
}
