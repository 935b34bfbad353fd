/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Storage       StorageConfig `yaml:"storage"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// CanvasConfig holds editor session defaults.
type CanvasConfig struct {
	DefaultZoom  float64 `yaml:"default_zoom"`
	HistoryLimit int     `yaml:"history_limit"`
	PasteOffset  float64 `yaml:"paste_offset"`
}

type StorageConfig struct {
	// BoardsDir is where boards live; empty means next to the config file.
	BoardsDir          string `yaml:"boards_dir"`
	AutosaveDebounceMs int    `yaml:"autosave_debounce_ms"`
	SnapshotKeep       int    `yaml:"snapshot_keep"`
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	TLSInsecure bool   `yaml:"tls_insecure"`
	SyncEnabled bool   `yaml:"sync_enabled"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Canvas:        CanvasConfig{DefaultZoom: 1, HistoryLimit: 100, PasteOffset: 20},
		Storage:       StorageConfig{AutosaveDebounceMs: 500, SnapshotKeep: 50},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvBackendURL       = "CZD_BACKEND_URL"
	EnvBackendTimeoutMs = "CZD_BACKEND_TIMEOUT_MS"
	EnvBackendTLSInsec  = "CZD_TLS_INSECURE"
	EnvSyncEnabled      = "CZD_SYNC_ENABLED"
	EnvTelemetryOptIn   = "CZD_TELEMETRY_OPT_IN"
	EnvBoardsDir        = "CZD_BOARDS_DIR"
	EnvLogLevel         = "CZD_LOG_LEVEL"
	EnvLogFormat        = "CZD_LOG_FORMAT"
	EnvLogSource        = "CZD_LOG_SOURCE"
	EnvLogFile          = "CZD_LOG_FILE"
)

const (
	keyringService = "ceziladraw"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the OS keychain.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements TokenStore with github.com/zalando/go-keyring.
// Tests call keyring.MockInit() to swap in the in-memory provider.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Ceziladraw")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Ceziladraw")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "ceziladraw")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "ceziladraw")
		}
	}
	if base == "" || !filepath.IsAbs(base) {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load returns defaults merged with the user config file (if present) and
// the environment. A file that does not parse is reported as an error while
// the returned config still carries defaults and overrides. The backend token
// comes from the keychain; a missing entry yields "".
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, fileErr
}

// Save writes the user config YAML and persists the token into the keychain (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return tokenStore.Set(keyringService, keyringToken, token)
	}
	return nil
}

// ClearToken removes the backend token from the keychain. A missing entry is not an error.
func ClearToken() error {
	if err := tokenStore.Delete(keyringService, keyringToken); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans are copied as-is so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn

	if src.Canvas.DefaultZoom > 0 {
		dst.Canvas.DefaultZoom = src.Canvas.DefaultZoom
	}
	if src.Canvas.HistoryLimit > 0 {
		dst.Canvas.HistoryLimit = src.Canvas.HistoryLimit
	}
	if src.Canvas.PasteOffset != 0 {
		dst.Canvas.PasteOffset = src.Canvas.PasteOffset
	}

	if strings.TrimSpace(src.Storage.BoardsDir) != "" {
		dst.Storage.BoardsDir = strings.TrimSpace(src.Storage.BoardsDir)
	}
	if src.Storage.AutosaveDebounceMs > 0 {
		dst.Storage.AutosaveDebounceMs = src.Storage.AutosaveDebounceMs
	}
	if src.Storage.SnapshotKeep > 0 {
		dst.Storage.SnapshotKeep = src.Storage.SnapshotKeep
	}

	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	dst.Backend.TLSInsecure = src.Backend.TLSInsecure
	dst.Backend.SyncEnabled = src.Backend.SyncEnabled

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// envOverride binds one config key to the variable that overrides it.
type envOverride struct {
	key   string
	env   string
	apply func(cfg *AppConfig, v string)
}

var envOverrides = []envOverride{
	{"backend.base_url", EnvBackendURL, func(c *AppConfig, v string) { c.Backend.BaseURL = v }},
	{"backend.timeout_ms", EnvBackendTimeoutMs, func(c *AppConfig, v string) {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backend.TimeoutMs = n
		}
	}},
	{"backend.tls_insecure", EnvBackendTLSInsec, func(c *AppConfig, v string) { c.Backend.TLSInsecure = parseBool(v) }},
	{"backend.sync_enabled", EnvSyncEnabled, func(c *AppConfig, v string) { c.Backend.SyncEnabled = parseBool(v) }},
	{"general.telemetry_opt_in", EnvTelemetryOptIn, func(c *AppConfig, v string) { c.General.TelemetryOptIn = parseBool(v) }},
	{"storage.boards_dir", EnvBoardsDir, func(c *AppConfig, v string) { c.Storage.BoardsDir = v }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = parseBool(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

// applyEnvOverrides applies every set, non-blank override variable.
func applyEnvOverrides(cfg *AppConfig) {
	for _, o := range envOverrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			o.apply(cfg, v)
		}
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	for _, o := range envOverrides {
		if o.key == key && strings.TrimSpace(os.Getenv(o.env)) != "" {
			return o.env, true
		}
	}
	return "", false
}

// EffectiveTimeout returns the backend request timeout, falling back to the default.
func (b BackendConfig) EffectiveTimeout() time.Duration {
	ms := b.TimeoutMs
	if ms <= 0 {
		ms = Defaults().Backend.TimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// AutosaveDebounce returns the debounce window of the remote/snapshot autosave cycle.
func (s StorageConfig) AutosaveDebounce() time.Duration {
	ms := s.AutosaveDebounceMs
	if ms <= 0 {
		ms = Defaults().Storage.AutosaveDebounceMs
	}
	return time.Duration(ms) * time.Millisecond
}

// ResolveBoardsDir returns the boards directory, defaulting to "boards" next to the config file.
func (s StorageConfig) ResolveBoardsDir() (string, error) {
	if s.BoardsDir != "" {
		return s.BoardsDir, nil
	}
	p, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(p), "boards"), nil
}
