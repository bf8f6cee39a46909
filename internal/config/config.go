package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	CacheDriver   string // memory|redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SeedScale    int
	SeedSize     int
	SyncInterval time.Duration
	StoreTimeout time.Duration
	TestTime     time.Duration
	SessionIdle  time.Duration
	// StrictBoot makes a question bank too small for SeedSize fatal at startup.
	// When off the gateway serves anyway and Initialize answers 400.
	StrictBoot   bool

	AuthHMACSecret string
	SecureCookies  bool
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	ExportBasePath string
}

// Load reads an optional .env file and then the environment.
// Variables already set in the environment win over .env.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv()
}

func FromEnv() Config {
	mode := Mode(envOr("MODE", string(ModeOffline)))
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		CacheDriver:   envOr("CACHE_DRIVER", "memory"),
		RedisAddr:     envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		RedisPrefix:   envOr("REDIS_PREFIX", "history:"),

		SeedScale:    envInt("SEED_SCALE", 100),
		SeedSize:     envInt("SEED_SIZE", 30),
		SyncInterval: envDuration("SYNC_INTERVAL", 10*time.Minute),
		StoreTimeout: envDuration("STORE_TIMEOUT", 5*time.Second),
		TestTime:     envDuration("TEST_TIME", 30*time.Minute),
		SessionIdle:  envDuration("SESSION_IDLE", 30*time.Minute),
		StrictBoot:   envBool("STRICT_BOOT", true),

		AuthHMACSecret: envOr("AUTH_HMAC_SECRET", "dev-secret-change-me"),
		SecureCookies:  envBool("SECURE_COOKIES", mode == ModeOnline),
		AdminUser:      envOr("ADMIN_USER", "admin"),
		AdminPassHash:  envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://contest.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),

		ExportBasePath: envOr("EXPORT_BASE_PATH", "./data"),
	}
}

// CORSOrigins returns the allowed origins for the configured mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
