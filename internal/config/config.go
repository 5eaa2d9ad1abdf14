// Package config loads and holds the application configuration. The
// configuration is assembled once at process start (config file, .env,
// environment overrides) and passed by reference into the orchestrator
// and library packages; no library function reads ambient global state.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Feeds    Feeds    `mapstructure:"feeds"`
	Publish  Publish  `mapstructure:"publish"`
	Review   Review   `mapstructure:"review"`
	Featured Featured `mapstructure:"featured"`
	Feedback Feedback `mapstructure:"feedback"`
	Images   Images   `mapstructure:"images"`
	Server   Server   `mapstructure:"server"`
	Comments Comments `mapstructure:"comments"`
}

// App holds general application configuration.
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
	Geo     string `mapstructure:"geo"`
	Lang    string `mapstructure:"lang"`
}

// AI holds LLM backend configuration. The write backend (Gemini) serves
// long-form generation and continuation chunks; the filter backend
// (OpenAI) serves short structured-JSON tasks and JSON repair.
type AI struct {
	Enabled bool         `mapstructure:"enabled"`
	Gemini  GeminiConfig `mapstructure:"gemini"`
	OpenAI  OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds the write-model configuration.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	WriteModel  string  `mapstructure:"write_model"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds the classify/filter-model configuration.
type OpenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	ClassifyModel string `mapstructure:"classify_model"`
	FilterModel   string `mapstructure:"filter_model"`
	ReviewModel   string `mapstructure:"review_model"`
}

// Feeds holds RSS/text fetching configuration.
type Feeds struct {
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Publish holds the orchestrator's volume and selection knobs.
type Publish struct {
	Limit                  int                `mapstructure:"limit"`
	NewsPerTrend           int                `mapstructure:"news_per_trend"`
	TopicModeWeights       map[string]float64 `mapstructure:"topic_mode_weights"`
	ArticleTypeWeights     map[string]float64 `mapstructure:"article_type_weights"`
	MaxInvestigationsPerDay int               `mapstructure:"max_investigations_per_day"`
	SourceSummaryMaxBullets int               `mapstructure:"source_summary_max_bullets"`
	SourceTextMaxChars     int                `mapstructure:"source_text_max_chars"`
	PublishedCap           int                `mapstructure:"published_cap"`
	PendingCap             int                `mapstructure:"pending_cap"`
}

// Review holds quality-gate and human-review routing configuration.
type Review struct {
	Enabled           bool   `mapstructure:"enabled"`
	HumanReviewMode   bool   `mapstructure:"human_review_mode"`
	ForceAllToPending bool   `mapstructure:"force_all_to_pending"`
	ScoreBelow        int    `mapstructure:"score_below"`
	ApproveThreshold  int    `mapstructure:"approve_threshold"`
	WebhookURL        string `mapstructure:"webhook_url"`
	DashboardURL      string `mapstructure:"dashboard_url"`
}

// Featured holds featured-article selection configuration.
type Featured struct {
	Max        int           `mapstructure:"max"`
	TTL        time.Duration `mapstructure:"ttl"`
	Categories []string      `mapstructure:"categories"`
}

// Feedback holds feedback-aggregation configuration.
type Feedback struct {
	LookbackLines int `mapstructure:"lookback_lines"`
	MaxGlobal     int `mapstructure:"max_global"`
	MaxCategory   int `mapstructure:"max_category"`
	MaxEditor     int `mapstructure:"max_editor"`
}

// Images holds image-attachment configuration. Mode is "gen", "web", or
// "off".
type Images struct {
	Mode string `mapstructure:"mode"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	AdminPassword string        `mapstructure:"admin_password"`
	CORSEnabled   bool          `mapstructure:"cors_enabled"`
}

// Comments holds comment-surface configuration and anti-spiral caps.
type Comments struct {
	AllowPublic       bool `mapstructure:"allow_public"`
	MaxPerArticle     int  `mapstructure:"max_per_article"`
	MaxDepth          int  `mapstructure:"max_depth"`
	MaxChildrenPerParent int `mapstructure:"max_children_per_parent"`
}

var globalConfig *Config

// Load loads the configuration from .env, an optional config file, and
// environment variables (prefix SATIREWIRE_).
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".satirewire")
		viper.SetConfigType("yaml")
	}

	setDefaults()

	viper.SetEnvPrefix("satirewire")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvironmentVariables()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary.
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// ValidatePublish checks the credentials required for a non-dry publish
// run. Missing credentials are a fatal configuration error: the process
// refuses to run with degraded safety rather than proceed.
func (c *Config) ValidatePublish(dryRun bool) error {
	if !c.AI.Enabled {
		if dryRun {
			return nil
		}
		return fmt.Errorf("AI backends are disabled; run with --dry-run or enable ai.enabled")
	}
	if c.AI.Gemini.APIKey == "" {
		return fmt.Errorf("gemini API key is required (set GEMINI_API_KEY or ai.gemini.api_key)")
	}
	if c.AI.OpenAI.APIKey == "" {
		return fmt.Errorf("openai API key is required (set OPENAI_API_KEY or ai.openai.api_key)")
	}
	return nil
}

// ValidateServe checks the configuration required to run the review API.
func (c *Config) ValidateServe() error {
	if c.Server.AdminPassword == "" {
		return fmt.Errorf("admin password is required (set ADMIN_PASSWORD or server.admin_password)")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", "data")
	viper.SetDefault("app.geo", "NL")
	viper.SetDefault("app.lang", "nl")

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.gemini.write_model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.temperature", 0.9)
	viper.SetDefault("ai.openai.classify_model", "gpt-4.1-mini")
	viper.SetDefault("ai.openai.filter_model", "gpt-4.1-mini")
	viper.SetDefault("ai.openai.review_model", "gpt-4.1-mini")

	viper.SetDefault("feeds.user_agent", "SatireWire/1.0 (+rss)")
	viper.SetDefault("feeds.timeout", "45s")

	viper.SetDefault("publish.limit", 3)
	viper.SetDefault("publish.news_per_trend", 3)
	viper.SetDefault("publish.topic_mode_weights", map[string]float64{
		"trending": 0.7, "societal_pulse": 0.3,
	})
	viper.SetDefault("publish.article_type_weights", map[string]float64{
		"normal": 0.5, "short": 0.5, "investigation": 0.08,
	})
	viper.SetDefault("publish.max_investigations_per_day", 1)
	viper.SetDefault("publish.source_summary_max_bullets", 4)
	viper.SetDefault("publish.source_text_max_chars", 4000)
	viper.SetDefault("publish.published_cap", 2000)
	viper.SetDefault("publish.pending_cap", 500)

	viper.SetDefault("review.enabled", true)
	viper.SetDefault("review.human_review_mode", true)
	viper.SetDefault("review.force_all_to_pending", true)
	viper.SetDefault("review.score_below", 85)
	viper.SetDefault("review.approve_threshold", 75)

	viper.SetDefault("featured.max", 4)
	viper.SetDefault("featured.ttl", "12h")
	viper.SetDefault("featured.categories", []string{"politiek", "tech", "buitenland"})

	viper.SetDefault("feedback.lookback_lines", 400)
	viper.SetDefault("feedback.max_global", 6)
	viper.SetDefault("feedback.max_category", 6)
	viper.SetDefault("feedback.max_editor", 6)

	viper.SetDefault("images.mode", "off")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5179)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.cors_enabled", true)

	viper.SetDefault("comments.allow_public", true)
	viper.SetDefault("comments.max_per_article", 300)
	viper.SetDefault("comments.max_depth", 3)
	viper.SetDefault("comments.max_children_per_parent", 60)
}

// bindEnvironmentVariables binds the conventional unprefixed credential
// variables on top of the SATIREWIRE_ prefix.
func bindEnvironmentVariables() {
	_ = viper.BindEnv("ai.gemini.api_key", "GEMINI_API_KEY", "SATIREWIRE_AI_GEMINI_API_KEY")
	_ = viper.BindEnv("ai.openai.api_key", "OPENAI_API_KEY", "SATIREWIRE_AI_OPENAI_API_KEY")
	_ = viper.BindEnv("server.admin_password", "ADMIN_PASSWORD", "SATIREWIRE_SERVER_ADMIN_PASSWORD")
	_ = viper.BindEnv("review.webhook_url", "REVIEW_WEBHOOK_URL")
	_ = viper.BindEnv("review.dashboard_url", "REVIEW_DASHBOARD_URL")
}
