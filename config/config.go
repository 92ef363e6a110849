// Package config loads settings from config.yaml, .env files and
// SEOAUDIT_* environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/document"
	"github.com/seo-optimizer/auditor/scorer"
)

// EnvPrefix prefixes every environment override, e.g. SEOAUDIT_CACHE_TTL.
const EnvPrefix = "SEOAUDIT"

type Config struct {
	Server    ServerConfig        `mapstructure:"server"`
	Log       LogConfig           `mapstructure:"log"`
	Cache     CacheConfig         `mapstructure:"cache"`
	Fetch     FetchConfig         `mapstructure:"fetch"`
	Limits    LimitsConfig        `mapstructure:"limits"`
	RateLimit RateLimitConfig     `mapstructure:"ratelimit"`
	Stats     StatsConfig         `mapstructure:"stats"`
	Platform  PlatformConfig      `mapstructure:"platform"`
	Scoring   scorer.Placeholders `mapstructure:"scoring"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	// Mode is the gin mode: debug, release or test.
	Mode string `mapstructure:"mode"`
	// DevMode exposes popular domains on /api/statistics.
	DevMode bool `mapstructure:"devmode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type CacheConfig struct {
	Dir string        `mapstructure:"dir"`
	TTL time.Duration `mapstructure:"ttl"`
}

type FetchConfig struct {
	FullTimeout  time.Duration `mapstructure:"fulltimeout"`
	FastTimeout  time.Duration `mapstructure:"fasttimeout"`
	UserAgent    string        `mapstructure:"useragent"`
	MaxBodyBytes int64         `mapstructure:"maxbodybytes"`
}

// ParseLimits bounds how much of a page one audit mode examines.
type ParseLimits struct {
	MarkupBytes      int `mapstructure:"markupbytes"`
	HeadingsPerLevel int `mapstructure:"headingsperlevel"`
	Outline          int `mapstructure:"outline"`
	Images           int `mapstructure:"images"`
}

type LimitsConfig struct {
	Full ParseLimits `mapstructure:"full"`
	Fast ParseLimits `mapstructure:"fast"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requestspersecond"`
	Burst             int     `mapstructure:"burst"`
}

type StatsConfig struct {
	Dir          string `mapstructure:"dir"`
	RequestsFile string `mapstructure:"requestsfile"`
}

type PlatformConfig struct {
	// RulesFile optionally replaces the built-in fingerprint tables.
	RulesFile string `mapstructure:"rulesfile"`
}

// LoadEnv reads .env.development, falling back to .env. Neither is required.
func LoadEnv() {
	if err := godotenv.Load(".env.development"); err != nil {
		_ = godotenv.Load()
	}
}

func setDefaults(v *viper.Viper) {
	full, fast := document.FullOptions(), document.FastOptions()
	placeholders := scorer.DefaultPlaceholders()

	v.SetDefault("server.port", "8082")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.devmode", false)
	v.SetDefault("log.level", "")
	v.SetDefault("cache.dir", ".cache/audits")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("fetch.fulltimeout", "15s")
	v.SetDefault("fetch.fasttimeout", "5s")
	v.SetDefault("fetch.useragent", "SEOAuditor/1.0")
	v.SetDefault("fetch.maxbodybytes", 5<<20)
	v.SetDefault("limits.full.markupbytes", full.MarkupLimit)
	v.SetDefault("limits.full.headingsperlevel", full.MaxHeadings)
	v.SetDefault("limits.full.outline", full.MaxOutline)
	v.SetDefault("limits.full.images", full.MaxImages)
	v.SetDefault("limits.fast.markupbytes", fast.MarkupLimit)
	v.SetDefault("limits.fast.headingsperlevel", fast.MaxHeadings)
	v.SetDefault("limits.fast.outline", fast.MaxOutline)
	v.SetDefault("limits.fast.images", fast.MaxImages)
	v.SetDefault("ratelimit.requestspersecond", 2)
	v.SetDefault("ratelimit.burst", 5)
	v.SetDefault("stats.dir", "data")
	v.SetDefault("stats.requestsfile", "data/statistics.json")
	v.SetDefault("platform.rulesfile", "")
	v.SetDefault("scoring.content", placeholders.Content)
	v.SetDefault("scoring.links", placeholders.Links)
	v.SetDefault("scoring.mobile_friendly", placeholders.MobileFriendly)
	v.SetDefault("scoring.load_speed", placeholders.LoadSpeed)
}

// Load reads configuration. When file is empty, config.yaml is looked up in
// the working directory and ./config; a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Unprefixed variables the server has always honoured.
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.Mode = mode
	}
	if os.Getenv("DEV_MODE") == "true" {
		cfg.Server.DevMode = true
	}

	return &cfg, nil
}

func (l ParseLimits) options(scanServices bool) document.ParseOptions {
	return document.ParseOptions{
		MarkupLimit:      l.MarkupBytes,
		MaxHeadings:      l.HeadingsPerLevel,
		MaxOutline:       l.Outline,
		MaxImages:        l.Images,
		ScanServicePages: scanServices,
	}
}

// Analyzer returns the orchestrator settings.
func (c *Config) Analyzer() analyzer.Config {
	return analyzer.Config{
		FullTimeout: c.Fetch.FullTimeout,
		FastTimeout: c.Fetch.FastTimeout,
		CacheTTL:    c.Cache.TTL,
		Full:        c.Limits.Full.options(true),
		Fast:        c.Limits.Fast.options(false),
	}
}
