package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "rubybot/internal/shared/config"
)

type Config struct {
	Bot      sharedConfig.BotConfig      `mapstructure:"bot"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis"`
	Lavalink sharedConfig.LavalinkConfig `mapstructure:"lavalink"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configuration from ./configs/config.yaml plus RUBYBOT_* env
// variables and returns the typed config.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../configs")

	viper.SetEnvPrefix("RUBYBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional when everything comes from the environment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults() {
	viper.SetDefault("bot.mode", "production")
	viper.SetDefault("bot.status_lines", []string{
		"Listening /help",
		"Serving {servers} servers",
		"24x7 for music",
	})

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "rubybot")
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.conn_max_lifetime", 60)

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("lavalink.enabled", false)
	viper.SetDefault("lavalink.host", "localhost")
	viper.SetDefault("lavalink.port", 2333)
	viper.SetDefault("lavalink.password", "youshallnotpass")
	viper.SetDefault("lavalink.secure", false)
}
