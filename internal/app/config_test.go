package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigOverlayLosesToEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
PORT: 9000
ACCESS_TOKEN_TTL: 120
GOAL_PLAN_STALENESS_POLICY: auto
CORS_ALLOWED_ORIGINS:
  - https://a.example.com
  - https://b.example.com
JWT_SECRET_KEY: from-file
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET_KEY", "from-env")
	for _, k := range []string{"PORT", "ACCESS_TOKEN_TTL", "GOAL_PLAN_STALENESS_POLICY", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9000" || cfg.AccessTokenTTL != 2*time.Minute {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.JWTSecretKey != "from-env" {
		t.Fatalf("env should win, got %q", cfg.JWTSecretKey)
	}
	if cfg.StalenessPolicy != recompute.PolicyAuto {
		t.Fatalf("policy=%q", cfg.StalenessPolicy)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("origins=%v", cfg.CORSOrigins)
	}
}

func TestLoadConfigRejectsBadPolicy(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("GOAL_PLAN_STALENESS_POLICY", "sometimes")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected an error for an unknown policy")
	}
}

func TestLoadConfigRejectsNestedOverlay(t *testing.T) {
	t.Setenv("CONFIG_FILE", writeFile(t, "bad.yaml", "DB:\n  HOST: x\n"))
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected an error for a nested overlay")
	}
}

func TestLoadEnvFilesKeepsExisting(t *testing.T) {
	path := writeFile(t, ".env", "NUTRI_TEST_A=file\nNUTRI_TEST_B=file\n")
	t.Setenv("NUTRI_TEST_A", "env")
	t.Setenv("NUTRI_TEST_B", "")
	os.Unsetenv("NUTRI_TEST_B")
	t.Cleanup(func() { os.Unsetenv("NUTRI_TEST_B") })

	if err := LoadEnvFiles(path); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	if os.Getenv("NUTRI_TEST_A") != "env" || os.Getenv("NUTRI_TEST_B") != "file" {
		t.Fatalf("A=%q B=%q", os.Getenv("NUTRI_TEST_A"), os.Getenv("NUTRI_TEST_B"))
	}
}
