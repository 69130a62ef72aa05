// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// AuthConfig configures JWT authentication.
type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours" mapstructure:"token_ttl_hours"`
}

// AnthropicConfig holds Anthropic API settings for the optional
// Claude-backed value-proposition extractor.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// CollectConfig configures website snapshot collection.
type CollectConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	MaxPages    int     `yaml:"max_pages" mapstructure:"max_pages"`
}

// ScoringConfig holds every threshold of the scoring and gap-analysis
// engine. The values are part of the observable contract; tests assert on
// them directly rather than on inline literals.
type ScoringConfig struct {
	// Similarity above this means two texts refer to the same claim.
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	// Dimension weights for the overall score.
	JobsWeight  float64 `yaml:"jobs_weight" mapstructure:"jobs_weight"`
	PainsWeight float64 `yaml:"pains_weight" mapstructure:"pains_weight"`
	GainsWeight float64 `yaml:"gains_weight" mapstructure:"gains_weight"`

	// Score for a dimension with no promises to judge.
	NeutralScore float64 `yaml:"neutral_score" mapstructure:"neutral_score"`

	// Pain reduction above this scores a flat 100 for the promise.
	PainReliefClamp float64 `yaml:"pain_relief_clamp" mapstructure:"pain_relief_clamp"`

	// Sentiment above this counts as positive (gain achieved).
	PositiveSentiment float64 `yaml:"positive_sentiment" mapstructure:"positive_sentiment"`

	// Gain contribution multipliers by gain type.
	GainWeightRequired float64 `yaml:"gain_weight_required" mapstructure:"gain_weight_required"`
	GainWeightExpected float64 `yaml:"gain_weight_expected" mapstructure:"gain_weight_expected"`
	GainWeightDesired  float64 `yaml:"gain_weight_desired" mapstructure:"gain_weight_desired"`
	GainWeightOther    float64 `yaml:"gain_weight_other" mapstructure:"gain_weight_other"`

	// Coarse gaps fire for dimensions scoring below this.
	GapScoreThreshold float64 `yaml:"gap_score_threshold" mapstructure:"gap_score_threshold"`
	// Coarse gap severity bands (score strictly below the band).
	SeverityCriticalBelow float64 `yaml:"severity_critical_below" mapstructure:"severity_critical_below"`
	SeverityHighBelow     float64 `yaml:"severity_high_below" mapstructure:"severity_high_below"`

	// Per-promise gaps fire below either threshold.
	GapFulfillmentThreshold float64 `yaml:"gap_fulfillment_threshold" mapstructure:"gap_fulfillment_threshold"`
	GapSentimentThreshold   float64 `yaml:"gap_sentiment_threshold" mapstructure:"gap_sentiment_threshold"`

	// Per-promise gap severity by mention frequency (percent of feedback).
	FreqCriticalPct float64 `yaml:"freq_critical_pct" mapstructure:"freq_critical_pct"`
	FreqHighPct     float64 `yaml:"freq_high_pct" mapstructure:"freq_high_pct"`
	FreqMediumPct   float64 `yaml:"freq_medium_pct" mapstructure:"freq_medium_pct"`

	// Statistical-significance lookup by sample size.
	SampleSize95     int     `yaml:"sample_size_95" mapstructure:"sample_size_95"`
	SampleSize90     int     `yaml:"sample_size_90" mapstructure:"sample_size_90"`
	Significance95   float64 `yaml:"significance_95" mapstructure:"significance_95"`
	Significance90   float64 `yaml:"significance_90" mapstructure:"significance_90"`
	SignificanceBase float64 `yaml:"significance_base" mapstructure:"significance_base"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and environment.
func Load() (*Config, error) {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CVPA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("collect.user_agent", "cvpa-audit/1.0")
	v.SetDefault("collect.timeout_secs", 30)
	v.SetDefault("collect.rate_per_sec", 2)
	v.SetDefault("collect.max_pages", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scoring.similarity_threshold", 0.5)
	v.SetDefault("scoring.jobs_weight", 0.4)
	v.SetDefault("scoring.pains_weight", 0.3)
	v.SetDefault("scoring.gains_weight", 0.3)
	v.SetDefault("scoring.neutral_score", 50)
	v.SetDefault("scoring.pain_relief_clamp", 0.5)
	v.SetDefault("scoring.positive_sentiment", 0.5)
	v.SetDefault("scoring.gain_weight_required", 1.0)
	v.SetDefault("scoring.gain_weight_expected", 0.8)
	v.SetDefault("scoring.gain_weight_desired", 0.6)
	v.SetDefault("scoring.gain_weight_other", 0.4)
	v.SetDefault("scoring.gap_score_threshold", 60)
	v.SetDefault("scoring.severity_critical_below", 40)
	v.SetDefault("scoring.severity_high_below", 50)
	v.SetDefault("scoring.gap_fulfillment_threshold", 0.3)
	v.SetDefault("scoring.gap_sentiment_threshold", 0.4)
	v.SetDefault("scoring.freq_critical_pct", 30)
	v.SetDefault("scoring.freq_high_pct", 15)
	v.SetDefault("scoring.freq_medium_pct", 5)
	v.SetDefault("scoring.sample_size_95", 385)
	v.SetDefault("scoring.sample_size_90", 200)
	v.SetDefault("scoring.significance_95", 0.95)
	v.SetDefault("scoring.significance_90", 0.90)
	v.SetDefault("scoring.significance_base", 0.85)

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
