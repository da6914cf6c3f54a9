// Package config holds the runtime configuration: where files live, which
// endpoints are queried and the fixed timeouts. Values come from defaults,
// an optional weatherwall.yaml, and WEATHERWALL_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "WEATHERWALL"

	KeySettingsPath    = "settings_path"
	KeyLogPath         = "log_path"
	KeyWebDir          = "web_dir"
	KeyIPEndpoint      = "ip_endpoint"
	KeyGeocodeEndpoint = "geocode_endpoint"
	KeyHTTPTimeout     = "http_timeout"
	KeyEmbedTimeout    = "embed_timeout"
	KeyPendingPolicy   = "pending_policy"
	KeyDebug           = "debug"
)

const (
	DefaultIPEndpoint      = "https://ipapi.co/json/"
	DefaultGeocodeEndpoint = "https://geocoding-api.open-meteo.com/v1/search"
)

type Config struct {
	SettingsPath    string
	LogPath         string
	WebDir          string
	IPEndpoint      string
	GeocodeEndpoint string
	HTTPTimeout     time.Duration
	EmbedTimeout    time.Duration
	PendingPolicy   string
	Debug           bool
}

// Load resolves the configuration. searchDirs are checked for
// weatherwall.yaml in order; a missing file is not an error.
func Load(searchDirs ...string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeySettingsPath, "")
	v.SetDefault(KeyLogPath, "")
	v.SetDefault(KeyWebDir, "")
	v.SetDefault(KeyIPEndpoint, DefaultIPEndpoint)
	v.SetDefault(KeyGeocodeEndpoint, DefaultGeocodeEndpoint)
	v.SetDefault(KeyHTTPTimeout, 10*time.Second)
	v.SetDefault(KeyEmbedTimeout, time.Second)
	v.SetDefault(KeyPendingPolicy, "drop")
	v.SetDefault(KeyDebug, false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigName("weatherwall")
	v.SetConfigType("yaml")
	for _, dir := range searchDirs {
		if dir != "" {
			v.AddConfigPath(dir)
		}
	}
	if len(searchDirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	c := &Config{
		SettingsPath:    v.GetString(KeySettingsPath),
		LogPath:         v.GetString(KeyLogPath),
		WebDir:          v.GetString(KeyWebDir),
		IPEndpoint:      v.GetString(KeyIPEndpoint),
		GeocodeEndpoint: v.GetString(KeyGeocodeEndpoint),
		HTTPTimeout:     v.GetDuration(KeyHTTPTimeout),
		EmbedTimeout:    v.GetDuration(KeyEmbedTimeout),
		PendingPolicy:   v.GetString(KeyPendingPolicy),
		Debug:           v.GetBool(KeyDebug),
	}

	var err error
	if c.SettingsPath, err = expand(c.SettingsPath); err != nil {
		return nil, err
	}
	if c.LogPath, err = expand(c.LogPath); err != nil {
		return nil, err
	}
	if c.WebDir, err = expand(c.WebDir); err != nil {
		return nil, err
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 10 * time.Second
	}
	if c.EmbedTimeout <= 0 {
		c.EmbedTimeout = time.Second
	}
	return c, nil
}

func expand(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	out, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", p, err)
	}
	return out, nil
}

// ExeDir is the directory of the running executable, or "." if unknown.
func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ContentIndex returns the page to load: web_dir/index.html when set,
// otherwise WeatherWallpaper/Web/index.html next to the executable.
func (c *Config) ContentIndex() string {
	dir := c.WebDir
	if dir == "" {
		dir = filepath.Join(ExeDir(), "WeatherWallpaper", "Web")
	}
	return filepath.Join(dir, "index.html")
}

// ContentURL is ContentIndex as a file:// URL.
func (c *Config) ContentURL() string {
	p := filepath.ToSlash(c.ContentIndex())
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
