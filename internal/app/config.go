package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/nutribridge-backend/internal/modules/recompute"
	"github.com/yungbote/nutribridge-backend/internal/platform/envutil"
)

type Config struct {
	LogMode        string
	Environment    string
	Version        string
	Port           string
	JWTSecretKey   string
	AccessTokenTTL time.Duration
	CORSOrigins    []string

	StalenessPolicy recompute.StalenessPolicy
	WorkerEnabled   bool
	ChatSessionTTL  time.Duration

	MetricsAddr string
	OtelEnabled bool
}

// LoadEnvFiles reads .env (or the files named) into the process
// environment. Variables already set are left alone.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	return godotenv.Load(files...)
}

// LoadConfig applies the CONFIG_FILE overlay, then reads the environment.
// The overlay is a flat YAML map of variable names; anything already set in
// the environment wins over it.
func LoadConfig() (Config, error) {
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := applyOverlay(path); err != nil {
			return Config{}, err
		}
	}
	policy, err := recompute.ParseStalenessPolicy(os.Getenv("GOAL_PLAN_STALENESS_POLICY"))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		LogMode:         envutil.String("LOG_MODE", "development"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		Port:            envutil.String("PORT", "8080"),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", "defaultsecret"),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		CORSOrigins:     splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		StalenessPolicy: policy,
		WorkerEnabled:   envutil.Bool("WORKER_ENABLED", true),
		ChatSessionTTL:  envutil.Seconds("CHAT_SESSION_TTL_SECONDS", 0),
		MetricsAddr:     envutil.String("METRICS_ADDR", ":9090"),
		OtelEnabled:     envutil.Bool("OTEL_ENABLED", false),
	}
	if cfg.AccessTokenTTL <= 0 {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	return cfg, nil
}

func applyOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read CONFIG_FILE: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	for k, v := range values {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" || v == nil {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		var s string
		switch tv := v.(type) {
		case []any:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			s = strings.Join(parts, ",")
		case map[string]any:
			return fmt.Errorf("CONFIG_FILE key %s: nested maps are not supported", key)
		default:
			s = fmt.Sprint(tv)
		}
		if err := os.Setenv(key, s); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
