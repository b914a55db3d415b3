package db

import (
	"fmt"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/platform/envutil"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	SQLitePath string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Driver:           envutil.String("DB_DRIVER", DriverPostgres),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
		PostgresName:     envutil.String("POSTGRES_NAME", "nutribridge"),
		SQLitePath:       envutil.String("SQLITE_PATH", "nutribridge.db"),
		MaxOpenConns:     envutil.Int("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:     envutil.Int("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  envutil.Seconds("DB_CONN_MAX_LIFETIME_SECONDS", 30*time.Minute),
		SlowThreshold:    envutil.Seconds("DB_SLOW_THRESHOLD_SECONDS", time.Second),
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresName,
	)
}
