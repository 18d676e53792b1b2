// Package config holds the application configuration and site-wide constants.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Server  ServerConfig  `yaml:"server"`
	Theme   ThemeConfig   `yaml:"theme"`
	Content ContentConfig `yaml:"content"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"The Journal"`
	Description string `yaml:"description" default:"Notes on things I build"`
	BaseURL     string `yaml:"base_url" default:"http://localhost:12700"`
	Author      string `yaml:"author" default:""`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12700"`
}

type ThemeConfig struct {
	// Default is the preference used when nothing has been persisted yet.
	Default string `yaml:"default" default:"auto"`

	// FallbackScheme is the effective scheme used when the system
	// color-scheme cannot be determined (no desktop portal available).
	FallbackScheme string `yaml:"fallback_scheme" default:"dark"`

	AllowSwitching     bool         `yaml:"allow_switching" default:"true"`
	SyntaxHighlighting SyntaxConfig `yaml:"syntax_highlighting"`
}

type SyntaxConfig struct {
	DefaultDark  string `yaml:"default_dark" default:"gruvbox"`
	DefaultLight string `yaml:"default_light" default:"catppuccin-latte"`
}

type ContentConfig struct {
	PostsDir string `yaml:"posts_dir" default:"posts"`

	// ShowDrafts controls draft visibility: "always", "never", or "auto".
	// In auto mode drafts are visible only when the environment is development.
	ShowDrafts string `yaml:"show_drafts" default:"auto"`
}

type StorageConfig struct {
	// Source selects the post backend: "fs" or "s3".
	Source string `yaml:"source" default:"fs"`

	// SettingsDB is the SQLite file holding persisted preferences.
	SettingsDB string `yaml:"settings_db" default:"journal.db"`

	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket" default:""`
	Endpoint string `yaml:"endpoint" default:""`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, just use defaults
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	AppConfig = config
	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
