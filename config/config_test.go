package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.IPEndpoint != DefaultIPEndpoint {
		t.Errorf("IPEndpoint = %q", c.IPEndpoint)
	}
	if c.GeocodeEndpoint != DefaultGeocodeEndpoint {
		t.Errorf("GeocodeEndpoint = %q", c.GeocodeEndpoint)
	}
	if c.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", c.HTTPTimeout)
	}
	if c.EmbedTimeout != time.Second {
		t.Errorf("EmbedTimeout = %v, want 1s", c.EmbedTimeout)
	}
	if c.PendingPolicy != "drop" || c.Debug {
		t.Errorf("PendingPolicy = %q, Debug = %v", c.PendingPolicy, c.Debug)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WEATHERWALL_IP_ENDPOINT", "http://127.0.0.1:9/ip")
	t.Setenv("WEATHERWALL_HTTP_TIMEOUT", "3s")
	t.Setenv("WEATHERWALL_DEBUG", "true")
	t.Setenv("WEATHERWALL_PENDING_POLICY", "queue")

	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.IPEndpoint != "http://127.0.0.1:9/ip" {
		t.Errorf("IPEndpoint = %q", c.IPEndpoint)
	}
	if c.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", c.HTTPTimeout)
	}
	if !c.Debug || c.PendingPolicy != "queue" {
		t.Errorf("Debug = %v, PendingPolicy = %q", c.Debug, c.PendingPolicy)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	body := "web_dir: /opt/globe\nembed_timeout: 2s\n"
	if err := os.WriteFile(filepath.Join(dir, "weatherwall.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.WebDir != "/opt/globe" {
		t.Errorf("WebDir = %q", c.WebDir)
	}
	if c.EmbedTimeout != 2*time.Second {
		t.Errorf("EmbedTimeout = %v, want 2s", c.EmbedTimeout)
	}
	if got := c.ContentIndex(); got != filepath.Join("/opt/globe", "index.html") {
		t.Errorf("ContentIndex() = %q", got)
	}
}

func TestMissingConfigFileTolerated(t *testing.T) {
	if _, err := Load(t.TempDir()); err != nil {
		t.Fatalf("Load with no config file: %v", err)
	}
}

func TestHomeExpansion(t *testing.T) {
	t.Setenv("WEATHERWALL_SETTINGS_PATH", "~/ww/settings.json")
	c, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if c.SettingsPath == "~/ww/settings.json" || !filepath.IsAbs(c.SettingsPath) {
		t.Errorf("SettingsPath not expanded: %q", c.SettingsPath)
	}
}

func TestDefaultContentIndex(t *testing.T) {
	c := &Config{}
	got := c.ContentIndex()
	want := filepath.Join("WeatherWallpaper", "Web", "index.html")
	if len(got) < len(want) || got[len(got)-len(want):] != want {
		t.Errorf("ContentIndex() = %q, want suffix %q", got, want)
	}
}

func TestContentURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "my web")
	c := &Config{WebDir: dir}
	got := c.ContentURL()
	if !strings.HasPrefix(got, "file:///") {
		t.Errorf("ContentURL() = %q, want file:/// prefix", got)
	}
	if !strings.HasSuffix(got, "/my%20web/index.html") {
		t.Errorf("ContentURL() = %q, want escaped path ending", got)
	}
}
