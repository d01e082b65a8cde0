// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// package config loads the tool configuration. Precedence, lowest to
// highest: built-in defaults, keyferry.yaml (user config dir, system dir,
// or current directory), KEYFERRY_* environment variables, command-line
// flags. On first run a default config file is written so users have
// something to edit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toeirei/keyferry/internal/i18n"
	"github.com/toeirei/keyferry/internal/logging"
)

// Config is the fully resolved tool configuration for one run.
type Config struct {
	Debug           bool   `mapstructure:"debug"`
	Quiet           bool   `mapstructure:"quiet"`
	FolderName      string `mapstructure:"foldername"`
	CustomField     string `mapstructure:"customfield"`
	PassphraseField string `mapstructure:"passphrasefield"`
	Passphrase      string `mapstructure:"passphrase"`
	LegacyMode      bool   `mapstructure:"legacymode"`
	Session         string `mapstructure:"session"`
	Language        string `mapstructure:"language"`
}

// fileConfig is the subset persisted to the default config file. Secrets
// (passphrase, session) never end up on disk.
type fileConfig struct {
	FolderName      string `yaml:"foldername"`
	CustomField     string `yaml:"customfield"`
	PassphraseField string `yaml:"passphrasefield"`
	LegacyMode      bool   `yaml:"legacymode"`
	Language        string `yaml:"language"`
}

// defaults are the built-in values, also used to seed the default config
// file on first run.
func defaults() map[string]any {
	return map[string]any{
		"debug":           false,
		"quiet":           false,
		"foldername":      "ssh-agent",
		"customfield":     "private",
		"passphrasefield": "passphrase",
		"passphrase":      "",
		"legacymode":      false,
		"session":         "",
		"language":        "en",
	}
}

// Load resolves the configuration for this run. cfgFile, when non-empty,
// pins the config file location and has the highest file precedence.
func Load(cmd *cobra.Command, cfgFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName("keyferry")
	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
	if userConfigPath, err := getConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := getConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
		// First run: leave a default config file behind to edit. Failing
		// to write one is not an error; the defaults still apply.
		if path, werr := writeDefaultConfig(); werr == nil {
			logging.Infof(i18n.T("config.created"), path)
		}
	}

	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("keyferry")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return c, err
	}
	// The flag spells "lang" but the config key is "language".
	if f := cmd.Flags().Lookup("lang"); f != nil {
		if err := v.BindPFlag("language", f); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

// getConfigPath returns the full path for the configuration file.
func getConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Keyferry")
		default: // Linux, macOS, etc.
			configDir = "/etc/keyferry"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "keyferry")
	}

	return filepath.Join(configDir, "keyferry.yaml"), nil
}

// writeDefaultConfig creates the user config file with the built-in
// defaults and returns its path.
func writeDefaultConfig() (string, error) {
	path, err := getConfigPath(false)
	if err != nil {
		return "", err
	}

	c := fileConfig{
		FolderName:      "ssh-agent",
		CustomField:     "private",
		PassphraseField: "passphrase",
		LegacyMode:      false,
		Language:        "en",
	}
	data, err := yaml.Marshal(&c)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", filepath.Dir(path), err)
	}
	// 0600: the file may later be edited to hold sensitive defaults.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}
