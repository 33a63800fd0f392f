package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds server and CLI settings
type Config struct {
	Port                 string        `mapstructure:"port"`
	DBPath               string        `mapstructure:"db_path"`
	DataDir              string        `mapstructure:"data_dir"`
	CatalogFile          string        `mapstructure:"catalog_file"`
	DownloadCatalog      bool          `mapstructure:"download_catalog"`
	CORSAllowedOrigins   []string      `mapstructure:"cors_allowed_origins"`
	FrontendDistPath     string        `mapstructure:"frontend_dist_path"`
	PriceRefreshInterval time.Duration `mapstructure:"price_refresh_interval"`
	QueryCacheSize       int           `mapstructure:"query_cache_size"`
	SuggestRateLimit     float64       `mapstructure:"suggest_rate_limit"` // requests per second per client
	SuggestBurst         int           `mapstructure:"suggest_burst"`
}

// Load reads configuration from an optional TOML file and the environment.
// Env var overrides use prefix TCG_ (TCG_PORT, TCG_DB_PATH, ...); the file
// path comes from TCG_CONFIG, falling back to ./tcg-catalog.toml.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "./tcg_catalog.db")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("catalog_file", "")
	v.SetDefault("download_catalog", true)
	v.SetDefault("cors_allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("frontend_dist_path", "")
	v.SetDefault("price_refresh_interval", 15*time.Minute)
	v.SetDefault("query_cache_size", 256)
	v.SetDefault("suggest_rate_limit", 10.0)
	v.SetDefault("suggest_burst", 20)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TCG_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("tcg-catalog")
	}

	v.SetEnvPrefix("TCG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.CORSAllowedOrigins = splitOrigins(c.CORSAllowedOrigins)
	return c, nil
}

// splitOrigins accepts both a list and a single comma separated env value
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
