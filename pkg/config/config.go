package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFormat      string        `mapstructure:"LOG_FORMAT"`

	AIProvider       string        `mapstructure:"AI_PROVIDER"`
	AnthropicAPIKey  string        `mapstructure:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string        `mapstructure:"OPENAI_API_KEY"`
	AIBaseURL        string        `mapstructure:"AI_BASE_URL"`
	AIModel          string        `mapstructure:"AI_MODEL"`
	AIMaxTokens      int           `mapstructure:"AI_MAX_TOKENS"`
	AITemperature    float64       `mapstructure:"AI_TEMPERATURE"`
	AITimeout        time.Duration `mapstructure:"AI_TIMEOUT"`
	AISendScreenshot bool          `mapstructure:"AI_SEND_SCREENSHOT"`

	ChromeRemoteURL string        `mapstructure:"CHROME_REMOTE_URL"`
	BrowserProxies  []string      `mapstructure:"BROWSER_PROXIES"`
	PageLoadTimeout time.Duration `mapstructure:"PAGE_LOAD_TIMEOUT"`
	RenderWait      time.Duration `mapstructure:"RENDER_WAIT"`
	WindowWidth     int           `mapstructure:"WINDOW_WIDTH"`
	WindowHeight    int           `mapstructure:"WINDOW_HEIGHT"`

	MaxHTMLChars        int `mapstructure:"MAX_HTML_CHARS"`
	MaxTextChars        int `mapstructure:"MAX_TEXT_CHARS"`
	MaxLinks            int `mapstructure:"MAX_LINKS"`
	MaxImages           int `mapstructure:"MAX_IMAGES"`
	MaxHeadingsPerLevel int `mapstructure:"MAX_HEADINGS_PER_LEVEL"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	MaxConcurrentClones int64 `mapstructure:"MAX_CONCURRENT_CLONES"`
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var defaults = map[string]any{
	"SERVER_PORT":     "8000",
	"REQUEST_TIMEOUT": 5 * time.Minute,
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",

	"AI_PROVIDER":        ProviderAnthropic,
	"ANTHROPIC_API_KEY":  "",
	"OPENAI_API_KEY":     "",
	"AI_BASE_URL":        "",
	"AI_MODEL":           "",
	"AI_MAX_TOKENS":      4000,
	"AI_TEMPERATURE":     0.3,
	"AI_TIMEOUT":         120 * time.Second,
	"AI_SEND_SCREENSHOT": true,

	"CHROME_REMOTE_URL": "",
	"BROWSER_PROXIES":   []string{},
	"PAGE_LOAD_TIMEOUT": 60 * time.Second,
	"RENDER_WAIT":       5 * time.Second,
	"WINDOW_WIDTH":      1920,
	"WINDOW_HEIGHT":     1080,

	"MAX_HTML_CHARS":         8000,
	"MAX_TEXT_CHARS":         3000,
	"MAX_LINKS":              15,
	"MAX_IMAGES":             15,
	"MAX_HEADINGS_PER_LEVEL": 3,

	"REDIS_ADDR":     "",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"CACHE_TTL":      time.Hour,

	"POSTGRES_URL": "",

	"MAX_CONCURRENT_CLONES": 2,
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"port":      "SERVER_PORT",
	"log-level": "LOG_LEVEL",
}

// Load reads configuration from an optional .env file, environment variables
// and any bound command-line flags, in increasing order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigFile(".env")
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}
	v.AutomaticEnv()

	// A missing .env file is fine; production is configured through the environment.
	_ = v.ReadInConfig()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	switch c.AIProvider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}
	if c.AIMaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AIMaxTokens)
	}
	if c.AITemperature < 0 || c.AITemperature > 1 {
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 1, got %v", c.AITemperature)
	}
	if c.MaxConcurrentClones < 1 {
		return fmt.Errorf("MAX_CONCURRENT_CLONES must be at least 1, got %d", c.MaxConcurrentClones)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	return nil
}

// AIAPIKey returns the key for the configured provider.
func (c *Config) AIAPIKey() string {
	if c.AIProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.AnthropicAPIKey
}
