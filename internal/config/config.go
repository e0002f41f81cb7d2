package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	MaxViewers    int           `mapstructure:"max_viewers"`
	ChatLogCap    int           `mapstructure:"chat_log_cap"`
	ChatHistory   int           `mapstructure:"chat_history"`
	ChatCooldown  time.Duration `mapstructure:"chat_cooldown"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`

	DBPath string `mapstructure:"db_path"`

	// Raw client ICE configuration; parsed and validated via ICEServers().
	ICEServersJSON string `mapstructure:"ice_servers_json"`
	StunURLs       string `mapstructure:"stun_urls"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("max_viewers", 20)
	v.SetDefault("chat_log_cap", 100)
	v.SetDefault("chat_history", 50)
	v.SetDefault("chat_cooldown", "500ms")
	v.SetDefault("sweep_interval", "15s")
	v.SetDefault("db_path", "./streamcast.db")
	v.SetDefault("stun_urls", "stun:stun.l.google.com:19302")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
