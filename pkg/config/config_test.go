package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	content := `
proxyBaseUrl: http://192.168.1.20:4724
listen: 0.0.0.0:4723
requestTimeout: 5s
log:
  file: /var/log/microej.log
  maxSizeMB: 50
  maxBackups: 2
  maxAgeDays: 1
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ProxyBaseURL != "http://192.168.1.20:4724/" {
		t.Errorf("expected trailing slash added, got %s", cfg.ProxyBaseURL)
	}
	if cfg.Listen != "0.0.0.0:4723" {
		t.Errorf("expected listen 0.0.0.0:4723, got %s", cfg.Listen)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.RequestTimeout)
	}
	if cfg.Log.File != "/var/log/microej.log" || cfg.Log.MaxSizeMB != 50 || cfg.Log.MaxBackups != 2 || cfg.Log.MaxAgeDays != 1 {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("listen: :9000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ProxyBaseURL != DefaultProxyBaseURL {
		t.Errorf("expected default proxy URL, got %s", cfg.ProxyBaseURL)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("expected default timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.Listen != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.Listen)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("proxyBaseUrl: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir_YAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("proxyBaseUrl: http://a:1/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProxyBaseURL != "http://a:1/" {
		t.Errorf("got %s", cfg.ProxyBaseURL)
	}
}

func TestLoadFromDir_YML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte("proxyBaseUrl: http://b:2/\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProxyBaseURL != "http://b:2/" {
		t.Errorf("got %s", cfg.ProxyBaseURL)
	}
}

func TestLoadFromDir_NoConfig(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProxyBaseURL != DefaultProxyBaseURL || cfg.Listen != DefaultListen {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvProxyURL, "http://emulator:5000")
	t.Setenv(EnvListen, "127.0.0.1:8000")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.ProxyBaseURL != "http://emulator:5000/" {
		t.Errorf("ProxyBaseURL = %s", cfg.ProxyBaseURL)
	}
	if cfg.Listen != "127.0.0.1:8000" {
		t.Errorf("Listen = %s", cfg.Listen)
	}
}

func TestApplyEnv_Unset(t *testing.T) {
	t.Setenv(EnvProxyURL, "")
	t.Setenv(EnvListen, "")

	cfg := Default()
	cfg.ApplyEnv()

	if cfg.ProxyBaseURL != DefaultProxyBaseURL || cfg.Listen != DefaultListen {
		t.Errorf("expected defaults untouched, got %+v", cfg)
	}
}

func TestSetProxyBaseURL(t *testing.T) {
	cfg := Default()
	cfg.SetProxyBaseURL("https://proxy.local:4724")
	if cfg.ProxyBaseURL != "https://proxy.local:4724/" {
		t.Errorf("ProxyBaseURL = %s", cfg.ProxyBaseURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		timeout time.Duration
		wantErr bool
	}{
		{"default", DefaultProxyBaseURL, DefaultRequestTimeout, false},
		{"https", "https://proxy:4724/", 0, false},
		{"no scheme", "localhost:4724/", 0, true},
		{"ftp scheme", "ftp://localhost:4724/", 0, true},
		{"missing host", "http:///", 0, true},
		{"negative timeout", DefaultProxyBaseURL, -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.ProxyBaseURL = tt.url
			cfg.RequestTimeout = tt.timeout
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
