package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestApplyDefaults(t *testing.T) {
	SetLogger(zerolog.New(os.Stderr).Level(zerolog.Disabled))

	config := &Config{}
	applyDefaults(config)

	if config.Site.Name != "The Journal" {
		t.Errorf("Expected site name 'The Journal', got %q", config.Site.Name)
	}
	if config.Server.Port != "12700" {
		t.Errorf("Expected port '12700', got %q", config.Server.Port)
	}
	if config.Theme.Default != "auto" {
		t.Errorf("Expected default theme preference 'auto', got %q", config.Theme.Default)
	}
	if config.Theme.FallbackScheme != "dark" {
		t.Errorf("Expected fallback scheme 'dark', got %q", config.Theme.FallbackScheme)
	}
	if !config.Theme.AllowSwitching {
		t.Error("Expected theme switching to be enabled by default")
	}
	if config.Theme.SyntaxHighlighting.DefaultDark != "gruvbox" {
		t.Errorf("Expected dark syntax theme 'gruvbox', got %q", config.Theme.SyntaxHighlighting.DefaultDark)
	}
	if config.Theme.SyntaxHighlighting.DefaultLight != "catppuccin-latte" {
		t.Errorf("Expected light syntax theme 'catppuccin-latte', got %q", config.Theme.SyntaxHighlighting.DefaultLight)
	}
	if config.Content.PostsDir != "posts" {
		t.Errorf("Expected posts dir 'posts', got %q", config.Content.PostsDir)
	}
	if config.Content.ShowDrafts != "auto" {
		t.Errorf("Expected show_drafts 'auto', got %q", config.Content.ShowDrafts)
	}
	if config.Storage.Source != "fs" {
		t.Errorf("Expected storage source 'fs', got %q", config.Storage.Source)
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected log level 'info', got %q", config.Logging.Level)
	}
}

func TestLoadConfig(t *testing.T) {
	SetLogger(zerolog.New(os.Stderr).Level(zerolog.Disabled))

	t.Run("Missing file uses defaults", func(t *testing.T) {
		if err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
			t.Fatalf("Expected missing config to succeed, got %v", err)
		}
		if AppConfig.Site.Name != "The Journal" {
			t.Errorf("Expected defaults, got site name %q", AppConfig.Site.Name)
		}
	})

	t.Run("File overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "site:\n  name: Field Notes\ntheme:\n  default: dark\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		if err := LoadConfig(path); err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if AppConfig.Site.Name != "Field Notes" {
			t.Errorf("Expected overridden name, got %q", AppConfig.Site.Name)
		}
		if AppConfig.Theme.Default != "dark" {
			t.Errorf("Expected overridden theme default, got %q", AppConfig.Theme.Default)
		}
		// Untouched fields keep their defaults.
		if AppConfig.Server.Port != "12700" {
			t.Errorf("Expected default port, got %q", AppConfig.Server.Port)
		}
	})

	t.Run("Invalid YAML fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("site: [broken"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := LoadConfig(path); err == nil {
			t.Error("Expected an error for invalid YAML")
		}
	})
}

func TestEnvironment(t *testing.T) {
	testCases := []struct {
		value    string
		expected string
	}{
		{"development", EnvDevelopment},
		{"production", EnvProduction},
		{"", EnvProduction},
		{"staging", EnvProduction},
	}

	for _, tc := range testCases {
		t.Run("JOURNAL_ENV="+tc.value, func(t *testing.T) {
			t.Setenv(EnvVar, tc.value)
			if got := Environment(); got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestShowDrafts(t *testing.T) {
	testCases := []struct {
		name     string
		mode     string
		env      string
		expected bool
	}{
		{"Auto in development", "auto", "development", true},
		{"Auto in production", "auto", "production", false},
		{"Always wins in production", "always", "production", true},
		{"Never wins in development", "never", "development", false},
		{"Unset behaves as auto", "", "production", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVar, tc.env)

			cfg := &Config{}
			applyDefaults(cfg)
			cfg.Content.ShowDrafts = tc.mode
			AppConfig = cfg

			if got := ShowDrafts(); got != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, got)
			}
		})
	}
}
