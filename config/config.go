// Package config reads the service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Database struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
}

type Config struct {
	Port         string
	Database     Database
	RedisAddr    string
	RedisPwd     string
	WebOrigin    string
	SessionTTL   time.Duration
	SeenThrottle time.Duration
	StaffUsers   []string
	LogLevel     slog.Level
}

// LoadEnv loads .env into the process environment. Variables already set win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file, using process environment")
		return
	}
	slog.Debug(".env loaded")
}

// GetEnv returns the variable or the first default when it is unset or blank.
func GetEnv(key string, defaultValue ...string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return v
}

func Load() Config {
	staffCSV := os.Getenv("STAFF_USERS") // e.g. "alice,bob"
	var staff []string
	for _, s := range strings.Split(staffCSV, ",") {
		if t := strings.TrimSpace(s); t != "" {
			staff = append(staff, strings.ToLower(t))
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(GetEnv("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}

	return Config{
		Port:         GetEnv("PORT", "3001"),
		Database:     loadDatabase(),
		RedisAddr:    GetEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:     os.Getenv("REDIS_PASSWORD"),
		WebOrigin:    GetEnv("WEB_ORIGIN", "http://localhost:3000"),
		SessionTTL:   seconds("SESSION_TTL_SECONDS", 24*time.Hour),
		SeenThrottle: seconds("SEEN_THROTTLE_SECONDS", 5*time.Minute),
		StaffUsers:   staff,
		LogLevel:     level,
	}
}

func loadDatabase() Database {
	const defaultMaxOpenConnections = 20
	const defaultMaxIdleConnections = 5
	const defaultMaxConnLifetime = time.Hour

	d := Database{
		Driver:          strings.ToLower(GetEnv("DB_DRIVER", DriverPostgres)),
		MaxOpenConns:    intEnv("DB_MAX_OPEN_CONNS", defaultMaxOpenConnections),
		MaxIdleConns:    intEnv("DB_MAX_IDLE_CONNS", defaultMaxIdleConnections),
		ConnMaxLifetime: defaultMaxConnLifetime,
		SlowThreshold:   200 * time.Millisecond,
	}
	switch d.Driver {
	case DriverSQLite:
		d.DSN = SQLiteDSN(GetEnv("SQLITE_PATH", "library.db"))
	default:
		d.DSN = GetEnv("DATABASE_URL", PostgresDSN(
			GetEnv("DB_HOST", "127.0.0.1"),
			GetEnv("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			GetEnv("DB_NAME", "library"),
			GetEnv("DB_PORT", "5432"),
			GetEnv("DB_SSLMODE", "disable"),
		))
	}
	return d
}

// PostgresDSN pins the session time zone to UTC so date columns round-trip
// unchanged.
func PostgresDSN(host, user, password, name, port, sslmode string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host, user, password, name, port, sslmode,
	)
}

// SQLiteDSN enables the busy timeout and foreign keys.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
}

func seconds(key string, def time.Duration) time.Duration {
	n, err := strconv.Atoi(GetEnv(key))
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func intEnv(key string, def int) int {
	n, err := strconv.Atoi(GetEnv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
