// Package config loads the launchpad service configuration from a file plus
// TOKEN_LP_* environment overrides.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	LogFile         string `mapstructure:"log_file"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
	PostgresURL     string `mapstructure:"postgres_url"`
	EventBufferSize int    `mapstructure:"event_buffer_size"`

	// Launch-time curve parameters. Zero means keep the built-in default.
	TradeFeeBps         uint16 `mapstructure:"trade_fee_bps"`
	CreatorShareBps     uint16 `mapstructure:"creator_share_bps"`
	ReferralShareBps    uint16 `mapstructure:"referral_share_bps"`
	GraduationThreshold uint64 `mapstructure:"graduation_threshold"`
}

const (
	DefaultLogFile         = "launchpad.log"
	DefaultEventBufferSize = 256
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"log_file":          DefaultLogFile,
		"event_buffer_size": DefaultEventBufferSize,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.LogFile == "" {
		return errors.New("missing log_file in configuration")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("invalid event_buffer_size")
	}
	if cfg.TradeFeeBps > 5_000 {
		return errors.New("trade_fee_bps exceeds the 50% cap")
	}
	if uint32(cfg.CreatorShareBps)+uint32(cfg.ReferralShareBps) > 10_000 {
		return errors.New("creator_share_bps plus referral_share_bps exceeds 100%")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("TOKEN_LP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if dsn := v.GetString("POSTGRES_URL"); dsn != "" {
		cfg.PostgresURL = dsn
	}
	if logFile := v.GetString("LOG_FILE"); logFile != "" {
		cfg.LogFile = logFile
	}
}
