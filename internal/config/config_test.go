package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("CARBONTRACK_API_BASE", "https://api.example.test/api/v1/")
	t.Setenv("CARBONTRACK_REQUEST_TIMEOUT", "3s")
	t.Setenv("DASHBOARD_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "testhost")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.API.BaseURL != "https://api.example.test/api/v1" {
		t.Errorf("API.BaseURL = %v, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.API.RequestTimeout != 3*time.Second {
		t.Errorf("API.RequestTimeout = %v, want %v", cfg.API.RequestTimeout, 3*time.Second)
	}
	if cfg.Dashboard.Port != "9090" {
		t.Errorf("Dashboard.Port = %v, want %v", cfg.Dashboard.Port, "9090")
	}
	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Demo.Enabled {
		t.Error("demo mode must be off by default")
	}
	if cfg.Demo.DemoAdminConfigured() {
		t.Error("no demo admin account may exist by default")
	}
	if cfg.Ledger.MonthlyTargetKg != 300 {
		t.Errorf("Ledger.MonthlyTargetKg = %v, want 300", cfg.Ledger.MonthlyTargetKg)
	}
	if cfg.Ledger.ChartDays != 8 {
		t.Errorf("Ledger.ChartDays = %v, want 8", cfg.Ledger.ChartDays)
	}
	if cfg.Notify.SuccessTTL != 10*time.Second || cfg.Notify.DefaultTTL != 5*time.Second {
		t.Errorf("Notify TTLs = %v/%v, want 10s/5s", cfg.Notify.SuccessTTL, cfg.Notify.DefaultTTL)
	}
	if cfg.API.RequestTimeout != 15*time.Second {
		t.Errorf("API.RequestTimeout = %v, want 15s", cfg.API.RequestTimeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "unknown session store",
			env:     map[string]string{"SESSION_STORE": "sqlite"},
			wantErr: true,
		},
		{
			name:    "unknown outbox store",
			env:     map[string]string{"OUTBOX_STORE": "kafka"},
			wantErr: true,
		},
		{
			name:    "admin email without password",
			env:     map[string]string{"CARBONTRACK_DEMO_ADMIN_EMAIL": "admin@example.test"},
			wantErr: true,
		},
		{
			name:    "negative target",
			env:     map[string]string{"LEDGER_MONTHLY_TARGET_KG": "-1"},
			wantErr: true,
		},
		{
			name: "demo admin fully configured",
			env: map[string]string{
				"CARBONTRACK_DEMO_MODE":           "true",
				"CARBONTRACK_DEMO_ADMIN_EMAIL":    "admin@example.test",
				"CARBONTRACK_DEMO_ADMIN_PASSWORD": "secret-pass",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDemoAdminConfigured(t *testing.T) {
	d := DemoConfig{AdminEmail: "a@b.c", AdminPassword: "pw"}
	if d.DemoAdminConfigured() {
		t.Error("demo admin must require demo mode")
	}
	d.Enabled = true
	if !d.DemoAdminConfigured() {
		t.Error("demo admin should be available when demo mode and credentials are set")
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "NONEXISTENT_KEY",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				if err := os.Setenv(tt.key, tt.envValue); err != nil {
					t.Fatalf("Failed to set env var: %v", err)
				}
				defer func() {
					_ = os.Unsetenv(tt.key)
				}()
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsTypedValues(t *testing.T) {
	t.Setenv("TEST_INT", "200")
	t.Setenv("TEST_INT_INVALID", "invalid")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "30s")
	t.Setenv("TEST_LIST", "a, b,,c")

	if got := getEnvAsInt("TEST_INT", 100); got != 200 {
		t.Errorf("getEnvAsInt() = %v, want 200", got)
	}
	if got := getEnvAsInt("TEST_INT_INVALID", 100); got != 100 {
		t.Errorf("getEnvAsInt() = %v, want default 100", got)
	}
	if got := getEnvAsFloat("TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("getEnvAsFloat() = %v, want 2.5", got)
	}
	if got := getEnvAsBool("TEST_BOOL", false); !got {
		t.Error("getEnvAsBool() = false, want true")
	}
	if got := getEnvAsDuration("TEST_DURATION", 10*time.Second); got != 30*time.Second {
		t.Errorf("getEnvAsDuration() = %v, want 30s", got)
	}
	got := getEnvAsList("TEST_LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("getEnvAsList() = %v, want [a b c]", got)
	}
}
