// Package config loads and persists the application's YAML configuration
// file, resolving the platform-appropriate config directory the way the
// original desktop tool did: %APPDATA% on Windows, ~/Library/Application
// Support on macOS, $XDG_CONFIG_HOME (or ~/.config) on Linux.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

const appName = "fm-dicom"

// Destination is one configured remote DICOM send target.
type Destination struct {
	Label           string `yaml:"label"`
	AETitle         string `yaml:"ae_title"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	CallingAETitle  string `yaml:"calling_ae_title,omitempty"`
}

// Config mirrors the recognized keys of the YAML configuration file.
type Config struct {
	LogPath           string        `yaml:"log_path"`
	LogLevel          string        `yaml:"log_level"`
	AETitle           string        `yaml:"ae_title"`
	Destinations      []Destination `yaml:"destinations"`
	WindowSize        [2]int        `yaml:"window_size"`
	DefaultExportDir  string        `yaml:"default_export_dir"`
	DefaultImportDir  string        `yaml:"default_import_dir"`
	ShowImagePreview  bool          `yaml:"show_image_preview"`
	Theme             string        `yaml:"theme"`
	FilePickerNative  bool          `yaml:"file_picker_native"`
}

// Default returns the configuration applied when no file exists and the
// values filled in for any key a present file omits.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		LogPath:          defaultLogPath(),
		LogLevel:         "INFO",
		AETitle:          "DCMSCU",
		Destinations:     nil,
		WindowSize:       [2]int{1200, 800},
		DefaultExportDir: filepath.Join(home, "DICOM_Exports"),
		DefaultImportDir: filepath.Join(home, "Downloads"),
		ShowImagePreview: false,
		Theme:            "dark",
		FilePickerNative: false,
	}
}

func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = os.Getenv("APPDATA")
		}
		return filepath.Join(base, appName, "logs", appName+".log")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Logs", appName, appName+".log")
	default:
		state := os.Getenv("XDG_STATE_HOME")
		if state == "" {
			home, _ := os.UserHomeDir()
			state = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(state, appName, "logs", appName+".log")
	}
}

// Dir returns the platform-appropriate directory this app's config,
// templates, and UID maps live under.
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			exe, err := os.Executable()
			if err != nil {
				return "", fmt.Errorf("resolve config dir: %w", err)
			}
			base = filepath.Dir(exe)
		}
		return filepath.Join(base, appName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve config dir: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve config dir: %w", err)
		}
		return filepath.Join(home, ".config", appName), nil
	}
}

// Path returns the config file path under Dir(), or the override if non-empty.
func Path(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// Load reads the config file at path, filling missing keys from Default()
// and writing the file if it does not yet exist.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
