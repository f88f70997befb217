// Package config loads the StudyHall client configuration from a TOML file,
// falling back to defaults when the file is missing. The API base URL is
// resolved once at startup: STUDYHALL_API_URL beats the file, the file beats
// the hardcoded default.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything the client resolves at startup.
type Config struct {
	APIURL        string
	LogDir        string
	UploadTimeout time.Duration
	RedirectDelay time.Duration
}

const (
	defaultConfigPath = "~/.config/studyhall/config.toml"
	defaultLogDir     = "~/.local/share/studyhall"
	defaultAPIURL     = "https://api.studyhall.app"

	defaultUploadTimeoutSec = 60
	defaultRedirectDelaySec = 3
)

// Load locates and parses the config file. A missing file is not an error;
// a present-but-unparsable one is.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:        defaultAPIURL,
		LogDir:        mustExpand(defaultLogDir),
		UploadTimeout: defaultUploadTimeoutSec * time.Second,
		RedirectDelay: defaultRedirectDelaySec * time.Second,
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string `toml:"api_url"`
		LogDir           string `toml:"log_dir"`
		UploadTimeoutSec int    `toml:"upload_timeout_seconds"`
		RedirectDelaySec int    `toml:"redirect_delay_seconds"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if u := strings.TrimSpace(raw.APIURL); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
	if d := strings.TrimSpace(raw.LogDir); d != "" {
		cfg.LogDir = mustExpand(d)
	}
	if raw.UploadTimeoutSec > 0 {
		cfg.UploadTimeout = time.Duration(raw.UploadTimeoutSec) * time.Second
	}
	if raw.RedirectDelaySec > 0 {
		cfg.RedirectDelay = time.Duration(raw.RedirectDelaySec) * time.Second
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LogPath returns the diagnostic log file path.
func (c Config) LogPath() string {
	return filepath.Join(c.LogDir, "studyhall.log")
}

func applyEnv(cfg *Config) {
	if u := strings.TrimSpace(os.Getenv("STUDYHALL_API_URL")); u != "" {
		cfg.APIURL = strings.TrimRight(u, "/")
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
