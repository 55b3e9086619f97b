package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TimurManjosov/ledgerrules/internal/money"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("LEDGERRULES_BASE_URL", "")
	t.Setenv("LEDGERRULES_API_KEY", "")
	return path
}

func TestLoadConfig_Missing(t *testing.T) {
	useTempConfig(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DefaultProfile != "local" || cfg.Profiles == nil {
		t.Errorf("Unexpected empty config: %+v", cfg)
	}
	if cfg.Format() != money.DefaultFormat {
		t.Errorf("Format = %q, want default", cfg.Format())
	}
}

func TestInitAndLoadConfig(t *testing.T) {
	path := useTempConfig(t)

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Profiles["local"].BaseURL != "http://localhost:8080" {
		t.Errorf("Unexpected local profile: %+v", cfg.Profiles["local"])
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := useTempConfig(t)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("profiles: [not, a, map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Error("Expected parse error")
	}
}

func TestGetProfile(t *testing.T) {
	useTempConfig(t)
	if err := SaveConfig(&Config{
		DefaultProfile: "local",
		NumberFormat:   "dot-comma",
		Profiles: map[string]Profile{
			"local": {BaseURL: "http://localhost:8080", APIKey: "file-key"},
			"empty": {},
		},
	}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	tests := []struct {
		name      string
		profile   string
		urlFlag   string
		keyFlag   string
		envURL    string
		envKey    string
		wantURL   string
		wantKey   string
		wantName  string
		wantError bool
	}{
		{name: "default profile", wantURL: "http://localhost:8080", wantKey: "file-key", wantName: "local"},
		{name: "flags override", urlFlag: "http://flag", keyFlag: "flag-key", wantURL: "http://flag", wantKey: "flag-key", wantName: "local"},
		{name: "env overrides file", envURL: "http://env", envKey: "env-key", wantURL: "http://env", wantKey: "env-key", wantName: "local"},
		{name: "flag beats env", urlFlag: "http://flag", envURL: "http://env", wantURL: "http://flag", wantKey: "file-key", wantName: "local"},
		{name: "unknown profile with flag", profile: "adhoc", urlFlag: "http://x", wantURL: "http://x", wantName: "adhoc"},
		{name: "profile without url", profile: "empty", wantError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LEDGERRULES_BASE_URL", tt.envURL)
			t.Setenv("LEDGERRULES_API_KEY", tt.envKey)

			p, name, err := GetProfile(tt.profile, tt.urlFlag, tt.keyFlag)
			if tt.wantError {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetProfile: %v", err)
			}
			if p.BaseURL != tt.wantURL || p.APIKey != tt.wantKey || name != tt.wantName {
				t.Errorf("got (%+v, %q), want url=%q key=%q name=%q", p, name, tt.wantURL, tt.wantKey, tt.wantName)
			}
		})
	}

	cfg, _ := LoadConfig()
	if cfg.Format() != money.FormatDotComma {
		t.Errorf("Format = %q, want dot-comma", cfg.Format())
	}
}
