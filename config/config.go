// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package config loads application settings from file, environment, and
// defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for settings
// (e.g. FAULTRPT_MAX_UPLOAD_SIZE_MB).
const envPrefix = "FAULTRPT"

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultArchiveBackupDir      = "archive_backups"
	DefaultMaxUploadSizeMB       = 500
	DefaultAlarmWarningThreshold = 100
)

// Config holds application settings.
type Config struct {
	ArchiveBackupEnabled  bool   `mapstructure:"archive_backup_enabled"`
	ArchiveBackupDir      string `mapstructure:"archive_backup_dir"`
	MaxUploadSizeMB       int    `mapstructure:"max_upload_size_mb"`
	AlarmWarningThreshold int    `mapstructure:"alarm_warning_threshold"`
}

// MaxUploadSizeBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
}

// Validate normalizes out-of-range values back to their defaults, the way
// the service treats a bad config knob as absent rather than fatal.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ArchiveBackupDir) == "" {
		c.ArchiveBackupDir = DefaultArchiveBackupDir
	}
	if c.MaxUploadSizeMB < 1 {
		c.MaxUploadSizeMB = DefaultMaxUploadSizeMB
	}
	if c.AlarmWarningThreshold < 1 {
		c.AlarmWarningThreshold = DefaultAlarmWarningThreshold
	}
	return nil
}

// Load reads configuration. If configPath is empty, only defaults and
// environment variables apply; a missing explicit file is an error only
// when the caller named one.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("archive_backup_enabled", true)
	v.SetDefault("archive_backup_dir", DefaultArchiveBackupDir)
	v.SetDefault("max_upload_size_mb", DefaultMaxUploadSizeMB)
	v.SetDefault("alarm_warning_threshold", DefaultAlarmWarningThreshold)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
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
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
