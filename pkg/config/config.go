package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Security   SecurityConfig   `mapstructure:"security"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type SecurityConfig struct {
	IPHashSalt string `mapstructure:"ip_hash_salt"`
}

// ModerationConfig configures the layered moderation stack. Empty API keys
// disable the corresponding layer rather than failing startup.
type ModerationConfig struct {
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	API        ModerationAPI    `mapstructure:"api"`
}

type ClassifierConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	ApiKey      string  `mapstructure:"api_key"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type EmbeddingConfig struct {
	Provider  string  `mapstructure:"provider"`
	Model     string  `mapstructure:"model"`
	ApiKey    string  `mapstructure:"api_key"`
	Threshold float64 `mapstructure:"threshold"`
}

type ModerationAPI struct {
	ApiKey     string                 `mapstructure:"api_key"`
	Thresholds map[string]interface{} `mapstructure:"thresholds"`
}

type RateLimitConfig struct {
	Backend string `mapstructure:"backend"` // redis or memory
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("⚠️ Warning: Could not load main config file: %v", err)
	}

	setDefaultValues()

	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	if err := viper.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues() {
	if globalConfig.Database.SSLMode == "" {
		globalConfig.Database.SSLMode = "disable"
	}
	if globalConfig.Server.Port == 0 {
		globalConfig.Server.Port = 8080
	}
	if globalConfig.RateLimit.Backend == "" {
		globalConfig.RateLimit.Backend = "redis"
	}
	if globalConfig.Moderation.Embedding.Threshold == 0 {
		globalConfig.Moderation.Embedding.Threshold = 0.85
	}
}

func GetConfig() *Config {
	return &globalConfig
}
