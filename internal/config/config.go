package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Smartlead SmartleadConfig `yaml:"smartlead" mapstructure:"smartlead"`
	Scrape    ScrapeConfig    `yaml:"scrape" mapstructure:"scrape"`
	Qualify   QualifyConfig   `yaml:"qualify" mapstructure:"qualify"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the prospect database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ApifyConfig holds Apify actor API settings.
type ApifyConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	JobActor     string `yaml:"job_actor" mapstructure:"job_actor"`
	ProfileActor string `yaml:"profile_actor" mapstructure:"profile_actor"`
}

// HunterConfig holds Hunter.io API settings.
type HunterConfig struct {
	Key           string  `yaml:"key" mapstructure:"key"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	ClassifyModel  string `yaml:"classify_model" mapstructure:"classify_model"`
	SequenceModel  string `yaml:"sequence_model" mapstructure:"sequence_model"`
	SequenceTokens int64  `yaml:"sequence_tokens" mapstructure:"sequence_tokens"`
}

// SmartleadConfig holds Smartlead campaign settings.
type SmartleadConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	CampaignID string `yaml:"campaign_id" mapstructure:"campaign_id"`
}

// ScrapeConfig configures the LinkedIn scrape phase.
type ScrapeConfig struct {
	Location     string   `yaml:"location" mapstructure:"location"`
	GeoID        string   `yaml:"geo_id" mapstructure:"geo_id"`
	Keywords     []string `yaml:"keywords" mapstructure:"keywords"`
	MaxPerSearch int      `yaml:"max_per_search" mapstructure:"max_per_search"`
	MaxAgeDays   int      `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// QualifyConfig configures the filter gates.
type QualifyConfig struct {
	CooldownDays   int      `yaml:"cooldown_days" mapstructure:"cooldown_days"`
	BrandListPath  string   `yaml:"brand_list_path" mapstructure:"brand_list_path"`
	ExtraBrands    []string `yaml:"extra_brands" mapstructure:"extra_brands"`
	MinVerifyScore int      `yaml:"min_verify_score" mapstructure:"min_verify_score"`
}

// PipelineConfig configures pipeline execution.
type PipelineConfig struct {
	MaxConcurrentEnrich int `yaml:"max_concurrent_enrich" mapstructure:"max_concurrent_enrich"`
}

// ServerConfig configures the reply-webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultKeywords are the decision-maker job titles searched when no
// keyword override is given. Companies hiring these roles are scaling
// outbound and are the target profile for cold email.
var DefaultKeywords = []string{
	"VP Sales",
	"Head of Growth",
	"CRO",
	"CMO",
	"VP Marketing",
	"Head of Sales",
	"Director of Sales",
	"Revenue Operations",
	"Head of RevOps",
	"Demand Generation Manager",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROSPECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("apify.base_url", "https://api.apify.com/v2")
	v.SetDefault("apify.job_actor", "apify~web-scraper")
	v.SetDefault("apify.profile_actor", "supreme_coder~linkedin-profile-scraper")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.rate_per_second", 5.0)
	v.SetDefault("anthropic.classify_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sequence_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.sequence_tokens", 1000)
	v.SetDefault("smartlead.base_url", "https://server.smartlead.ai/api/v1")
	v.SetDefault("scrape.location", "France")
	v.SetDefault("scrape.geo_id", "105015875")
	v.SetDefault("scrape.keywords", DefaultKeywords)
	v.SetDefault("scrape.max_per_search", 500)
	v.SetDefault("scrape.max_age_days", 7)
	v.SetDefault("qualify.cooldown_days", 90)
	v.SetDefault("qualify.min_verify_score", 80)
	v.SetDefault("pipeline.max_concurrent_enrich", 4)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
