/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"

	"skinforge/internal/geom"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type EditorConfig struct {
	SnapToGrid      bool   `yaml:"snap_to_grid"`
	GridSize        int    `yaml:"grid_size"`
	HistoryLimit    int    `yaml:"history_limit"`
	CoalesceMs      int    `yaml:"coalesce_ms"`
	FrameIntervalMs int    `yaml:"frame_interval_ms"`
	Device          string `yaml:"device"`
	Console         string `yaml:"console"`
}

type StorageConfig struct {
	Path        string `yaml:"path"`
	JournalKeep int    `yaml:"journal_keep"`
}

type RemoteConfig struct {
	Enabled   bool   `yaml:"enabled"`
	DSN       string `yaml:"dsn"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// The password is not stored on disk; it lives in the OS keychain.
}

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Remote        RemoteConfig  `yaml:"remote"`
	General       GeneralConfig `yaml:"general"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			SnapToGrid:      true,
			GridSize:        10,
			HistoryLimit:    50,
			CoalesceMs:      100,
			FrameIntervalMs: 16,
			Device:          "iphone-standard",
		},
		Storage: StorageConfig{Path: filepath.Join(xdg.DataHome, "skinforge", "skinforge.sqlite"), JournalKeep: 50},
		Remote:  RemoteConfig{TimeoutMs: 15000},
		General: GeneralConfig{TelemetryOptIn: false},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "SKF_CONFIG"
	EnvSnapToGrid     = "SKF_SNAP_TO_GRID"
	EnvGridSize       = "SKF_GRID_SIZE"
	EnvHistoryLimit   = "SKF_HISTORY_LIMIT"
	EnvDevice         = "SKF_DEVICE"
	EnvConsole        = "SKF_CONSOLE"
	EnvStoragePath    = "SKF_STORAGE_PATH"
	EnvRemoteDSN      = "SKF_PG_DSN"
	EnvRemoteEnabled  = "SKF_REMOTE_ENABLED"
	EnvTelemetryOptIn = "SKF_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SKF_LOG_LEVEL"
	EnvLogFormat = "SKF_LOG_FORMAT"
	EnvLogSource = "SKF_LOG_SOURCE"
	EnvLogFile   = "SKF_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "skinforge"
	keyringPassword = "remote_password"
)

// secretStore abstracts the keyring so tests can swap it.
var secretStore SecretStore = osKeyring{}

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path. SKF_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	if xdg.ConfigHome == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(xdg.ConfigHome, "skinforge", "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. The remote password is read from the keyring and
// returned separately; a missing entry yields "".
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, "", err
	}
	pw, _ := secretStore.Get(keyringService, keyringPassword)
	return cfg, pw, nil
}

// Password returns the remote password from the keyring, or "".
func Password() string {
	pw, _ := secretStore.Get(keyringService, keyringPassword)
	return pw
}

// StylesDir is where proof-sheet palettes live: a styles directory next to
// the config file.
func StylesDir() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "styles"), nil
}

// LoadFile reads one config file. A missing file yields defaults; a malformed
// one is an error.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML and stores the remote password in the OS
// keyring when non-empty.
func Save(cfg AppConfig, password string) error {
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
	if password != "" {
		if err := secretStore.Set(keyringService, keyringPassword, password); err != nil {
			return err
		}
	}
	return nil
}

// ForgetPassword removes the remote password from the keyring.
func ForgetPassword() error {
	err := secretStore.Delete(keyringService, keyringPassword)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// mergeInto copies file values over defaults. Booleans only count when the
// file actually mentions them, which raw lets us check.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	var present map[string]any
	_ = yaml.Unmarshal(raw, &present)
	has := func(section, key string) bool {
		m, _ := present[section].(map[string]any)
		_, ok := m[key]
		return ok
	}

	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// editor
	if has("editor", "snap_to_grid") {
		dst.Editor.SnapToGrid = src.Editor.SnapToGrid
	}
	if src.Editor.GridSize > 0 {
		dst.Editor.GridSize = src.Editor.GridSize
	}
	if src.Editor.HistoryLimit > 0 {
		dst.Editor.HistoryLimit = src.Editor.HistoryLimit
	}
	if src.Editor.CoalesceMs > 0 {
		dst.Editor.CoalesceMs = src.Editor.CoalesceMs
	}
	if src.Editor.FrameIntervalMs > 0 {
		dst.Editor.FrameIntervalMs = src.Editor.FrameIntervalMs
	}
	if s := strings.TrimSpace(src.Editor.Device); s != "" {
		dst.Editor.Device = s
	}
	if s := strings.TrimSpace(src.Editor.Console); s != "" {
		dst.Editor.Console = s
	}
	// storage
	if s := strings.TrimSpace(src.Storage.Path); s != "" {
		dst.Storage.Path = s
	}
	if src.Storage.JournalKeep > 0 {
		dst.Storage.JournalKeep = src.Storage.JournalKeep
	}
	// remote
	dst.Remote.Enabled = src.Remote.Enabled
	if s := strings.TrimSpace(src.Remote.DSN); s != "" {
		dst.Remote.DSN = s
	}
	if src.Remote.TimeoutMs > 0 {
		dst.Remote.TimeoutMs = src.Remote.TimeoutMs
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	// logging
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

func envBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSnapToGrid)); v != "" {
		cfg.Editor.SnapToGrid = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.GridSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Editor.HistoryLimit = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDevice)); v != "" {
		cfg.Editor.Device = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConsole)); v != "" {
		cfg.Editor.Console = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteDSN)); v != "" {
		cfg.Remote.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRemoteEnabled)); v != "" {
		cfg.Remote.Enabled = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = envBool(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = envBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"editor.snap_to_grid":      EnvSnapToGrid,
	"editor.grid_size":         EnvGridSize,
	"editor.history_limit":     EnvHistoryLimit,
	"editor.device":            EnvDevice,
	"editor.console":           EnvConsole,
	"storage.path":             EnvStoragePath,
	"remote.dsn":               EnvRemoteDSN,
	"remote.enabled":           EnvRemoteEnabled,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}

// Grid returns the snap grid described by the editor section.
func (e EditorConfig) Grid() geom.Grid {
	return geom.Grid{Enabled: e.SnapToGrid, Size: e.GridSize}
}

// CoalesceInterval is the history coalescing window.
func (e EditorConfig) CoalesceInterval() time.Duration {
	return time.Duration(e.CoalesceMs) * time.Millisecond
}

// FrameInterval is the pointer-move throttle period.
func (e EditorConfig) FrameInterval() time.Duration {
	if e.FrameIntervalMs <= 0 {
		return time.Duration(Defaults().Editor.FrameIntervalMs) * time.Millisecond
	}
	return time.Duration(e.FrameIntervalMs) * time.Millisecond
}

// Timeout is the remote store call timeout.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutMs <= 0 {
		return time.Duration(Defaults().Remote.TimeoutMs) * time.Millisecond
	}
	return time.Duration(r.TimeoutMs) * time.Millisecond
}
