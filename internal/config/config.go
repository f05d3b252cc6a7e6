// Package config loads CLI configuration from an optional config file
// and VOCADRILL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full CLI configuration.
type Config struct {
	Service  ServiceConfig  `mapstructure:"service" validate:"required"`
	Practice PracticeConfig `mapstructure:"practice" validate:"required"`
	DBPath   string         `mapstructure:"db_path"`
	Env      string         `mapstructure:"env" validate:"oneof=development production"`
}

// ServiceConfig points at the learning service.
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1"`
}

// PracticeConfig carries session defaults that the setup step may
// override per session.
type PracticeConfig struct {
	Tolerance        string `mapstructure:"tolerance" validate:"oneof=strict normal lenient"`
	ClozeEnabled     bool   `mapstructure:"cloze_enabled"`
	FeedbackSeconds  int    `mapstructure:"feedback_seconds" validate:"min=1,max=60"`
	MatchingPairSize int    `mapstructure:"matching_pair_size" validate:"min=2,max=10"`
}

// Load reads configuration. An absent config file is fine; environment
// variables and defaults cover everything.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("service.base_url", "http://localhost:8080")
	v.SetDefault("service.timeout", 10*time.Second)
	v.SetDefault("practice.tolerance", "normal")
	v.SetDefault("practice.cloze_enabled", true)
	v.SetDefault("practice.feedback_seconds", 5)
	v.SetDefault("practice.matching_pair_size", 5)
	v.SetDefault("env", "production")

	v.SetEnvPrefix("VOCADRILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("vocadrill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vocadrill")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateStruct(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = validator.New()

func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		var errMsgs []string
		for _, ferr := range err.(validator.ValidationErrors) {
			errMsgs = append(errMsgs, fmt.Sprintf(
				"field: %s, tag: %s, param: %s", ferr.Field(), ferr.Tag(), ferr.Param(),
			))
		}
		return fmt.Errorf("validation failed: %s", strings.Join(errMsgs, "; "))
	}
	return nil
}
