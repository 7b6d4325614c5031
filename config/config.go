package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Sources   SourcesConfig
	Output    OutputConfig
	Extract   ExtractConfig
	Matching  MatchingConfig
	Server    ServerConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// SourcesConfig locates the raw inputs produced by the crawler
type SourcesConfig struct {
	CSVPath               string `mapstructure:"csv_path"`
	FeedPath              string `mapstructure:"feed_path"`     // optional
	SnapshotPath          string `mapstructure:"snapshot_path"` // optional; selects snapshot mode
	PlaceholderImageToken string `mapstructure:"placeholder_image_token"`
}

// OutputConfig holds the catalog artifact destinations
type OutputConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
	XLSXPath    string `mapstructure:"xlsx_path"`   // optional
	SQLitePath  string `mapstructure:"sqlite_path"` // optional
}

// ExtractConfig tunes description handling during reconciliation
type ExtractConfig struct {
	MinDescriptionLength int  `mapstructure:"min_description_length"`
	InferVibeTags        bool `mapstructure:"infer_vibe_tags"`
	EnableDebugLogging   bool `mapstructure:"enable_debug_logging"`
}

// MatchingConfig holds preference scoring weights and budget tiers
type MatchingConfig struct {
	TagWeight          int      `mapstructure:"tag_weight"`
	BudgetBonus        int      `mapstructure:"budget_bonus"`
	PremiumBrandBonus  int      `mapstructure:"premium_brand_bonus"`
	BudgetMax          int64    `mapstructure:"budget_max"` // exclusive
	MidMin             int64    `mapstructure:"mid_min"`
	MidMax             int64    `mapstructure:"mid_max"`
	LuxuryMin          int64    `mapstructure:"luxury_min"` // exclusive
	PremiumBrands      []string `mapstructure:"premium_brands"`
	DefaultTopN        int      `mapstructure:"default_top_n"`
	Workers            int      `mapstructure:"workers"`
	EnableDebugLogging bool     `mapstructure:"enable_debug_logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	CatalogPath    string   `mapstructure:"catalog_path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from an explicit file when path is non-empty,
// otherwise it searches the default locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/leparfurm/")
	}

	v.SetEnvPrefix("LEPARFURM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Source defaults mirror the crawler's output file names
	v.SetDefault("sources.csv_path", "products_full.csv")
	v.SetDefault("sources.feed_path", "products_feed.xml")
	v.SetDefault("sources.snapshot_path", "")
	v.SetDefault("sources.placeholder_image_token", "icon-ring.svg")

	v.SetDefault("output.catalog_path", "products.json")
	v.SetDefault("output.xlsx_path", "")
	v.SetDefault("output.sqlite_path", "")

	v.SetDefault("extract.min_description_length", 10)
	v.SetDefault("extract.infer_vibe_tags", false)
	v.SetDefault("extract.enable_debug_logging", false)

	// Matching defaults; the Budget and Mid tiers overlap on purpose
	v.SetDefault("matching.tag_weight", 2)
	v.SetDefault("matching.budget_bonus", 3)
	v.SetDefault("matching.premium_brand_bonus", 1)
	v.SetDefault("matching.budget_max", 1500000)
	v.SetDefault("matching.mid_min", 1000000)
	v.SetDefault("matching.mid_max", 3000000)
	v.SetDefault("matching.luxury_min", 3000000)
	v.SetDefault("matching.premium_brands", []string{"Chanel", "Dior", "Tom Ford", "Creed", "Guerlain"})
	v.SetDefault("matching.default_top_n", 5)
	v.SetDefault("matching.workers", 4)
	v.SetDefault("matching.enable_debug_logging", false)

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.catalog_path", "products.json")

	v.SetDefault("cache.ttl", "10m")

	v.SetDefault("ratelimit.per_ip", 120)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Sources.CSVPath == "" {
		return fmt.Errorf("CSV export path is required (set LEPARFURM_SOURCES_CSV_PATH)")
	}

	if config.Output.CatalogPath == "" {
		return fmt.Errorf("catalog output path is required (set LEPARFURM_OUTPUT_CATALOG_PATH)")
	}

	if config.Extract.MinDescriptionLength < 0 {
		return fmt.Errorf("min description length must not be negative, got: %d", config.Extract.MinDescriptionLength)
	}

	m := config.Matching
	if m.TagWeight < 0 || m.BudgetBonus < 0 || m.PremiumBrandBonus < 0 {
		return fmt.Errorf("matching weights must not be negative, got: %d/%d/%d", m.TagWeight, m.BudgetBonus, m.PremiumBrandBonus)
	}

	if m.MidMin > m.MidMax {
		return fmt.Errorf("mid tier lower bound %d exceeds upper bound %d", m.MidMin, m.MidMax)
	}

	if m.DefaultTopN <= 0 {
		return fmt.Errorf("default top N must be positive, got: %d", m.DefaultTopN)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("per-IP rate limit must not be negative, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
