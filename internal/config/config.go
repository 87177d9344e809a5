package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Addr        string `mapstructure:"addr"`
	Environment string `mapstructure:"environment"`
	DatabaseURL string `mapstructure:"database_url"`
	JWTSecret   string `mapstructure:"jwt_secret"`

	Chat      ChatConfig      `mapstructure:"chat"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Processor ProcessorConfig `mapstructure:"processor"`

	RunMigrations bool   `mapstructure:"run_migrations"`
	MigrationsDir string `mapstructure:"migrations_dir"`
	NoticeDir     string `mapstructure:"notice_dir"`
}

type ChatConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type ProcessorConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
}

func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("environment", "development")
	v.SetDefault("chat.base_url", "https://chat.googleapis.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 500)
	v.SetDefault("openai.temperature", 0.0)
	v.SetDefault("processor.interval", time.Minute)
	v.SetDefault("processor.batch_size", 20)
	v.SetDefault("run_migrations", true)
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("notice_dir", "storage/notices")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if secret := v.GetString("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if key := v.GetString("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if token := v.GetString("CHAT_API_TOKEN"); token != "" {
		cfg.Chat.Token = token
	}
	if base := v.GetString("CHAT_API_BASE_URL"); base != "" {
		cfg.Chat.BaseURL = base
	}
	if addr := v.GetString("APP_ADDR"); addr != "" {
		cfg.Addr = addr
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Processor.Interval < time.Second {
		return fmt.Errorf("processor interval must be at least 1s")
	}
	if c.Processor.BatchSize <= 0 {
		return fmt.Errorf("processor batch size must be positive")
	}
	return nil
}
