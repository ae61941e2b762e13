package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen       = "127.0.0.1:4000"
	defaultMaxBodyBytes = 1_000_000
	defaultCORSOrigin   = "*"
	defaultLogLevel     = "info"
	defaultBackupKeep   = 14
	defaultDataFileName = "data.json"

	// volumeDir is used for the data file when it exists and nothing else
	// is configured, which suits container volumes.
	volumeDir = "/data"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API and UI.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// BackupConfig controls periodic snapshots of the data file.
type BackupConfig struct {
	// Cron is a standard 5-field schedule (e.g. "0 3 * * *"). Empty
	// disables scheduled backups.
	Cron string `yaml:"cron" json:"cron"`
	// Dir receives the snapshots. Defaults to "backup" next to the data file.
	Dir string `yaml:"dir" json:"dir"`
	// Keep is how many snapshots are retained.
	Keep int `yaml:"keep" json:"keep"`
}

// CaptureConfig controls PNG captures of the month page.
type CaptureConfig struct {
	Width          int `yaml:"width" json:"width"`
	Height         int `yaml:"height" json:"height"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// DataFile is the JSON document holding categories and events.
	DataFile string `yaml:"data_file" json:"data_file"`

	// MaxBodyBytes caps request bodies; larger bodies are rejected.
	MaxBodyBytes int64 `yaml:"max_body_bytes" json:"max_body_bytes"`

	// CORSOrigin is sent as Access-Control-Allow-Origin.
	CORSOrigin string `yaml:"cors_origin" json:"cors_origin"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if set with both fields, protects everything except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	Backup  BackupConfig  `yaml:"backup" json:"backup"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		MaxBodyBytes: defaultMaxBodyBytes,
		CORSOrigin:   defaultCORSOrigin,
		LogLevel:     defaultLogLevel,
		Backup: BackupConfig{
			Keep: defaultBackupKeep,
		},
		Capture: CaptureConfig{
			Width:          1280,
			Height:         960,
			TimeoutSeconds: 30,
		},
	}
}

// Normalize fills in missing or zero values.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.CORSOrigin == "" {
		c.CORSOrigin = d.CORSOrigin
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.Backup.Keep <= 0 {
		c.Backup.Keep = d.Backup.Keep
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = d.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = d.Capture.Height
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = d.Capture.TimeoutSeconds
	}
	if c.DataFile != "" && c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(filepath.Dir(c.DataFile), "backup")
	}
}

// BasicAuthEnabled reports whether both credentials are set.
func (c *Config) BasicAuthEnabled() bool {
	return c.BasicAuth != nil && c.BasicAuth.Username != "" && c.BasicAuth.Password != ""
}

// ApplyEnv layers environment overrides on top of the file config and
// resolves the data file location:
//
//   - PORT replaces the port of Listen.
//   - CALENDAR_DATA_FILE or DATA_FILE name the data file directly.
//   - CALENDAR_DATA_DIR or DATA_DIR name the directory holding data.json.
//   - Otherwise data_file from the config file is used, then /data/data.json
//     if /data is a directory, then data.json in the working directory.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		host, _, err := net.SplitHostPort(c.Listen)
		if err != nil {
			host = ""
		}
		c.Listen = net.JoinHostPort(host, port)
	}

	file := firstNonEmpty(getenv("CALENDAR_DATA_FILE"), getenv("DATA_FILE"))
	if file == "" {
		if dir := firstNonEmpty(getenv("CALENDAR_DATA_DIR"), getenv("DATA_DIR")); dir != "" {
			file = filepath.Join(dir, defaultDataFileName)
		}
	}
	if file == "" {
		file = c.DataFile
	}
	if file == "" {
		file = defaultDataFileName
		if st, err := os.Stat(volumeDir); err == nil && st.IsDir() {
			file = filepath.Join(volumeDir, defaultDataFileName)
		}
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	c.DataFile = abs
	c.Normalize()
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there with
//     0600 permissions and returned.
//   - Otherwise the YAML is read and missing values are defaulted.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file in the same directory,
// then rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".minical-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
