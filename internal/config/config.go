package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgcfg "github.com/Skotchmaster/lucaria/pkg/config"
	pkgdb "github.com/Skotchmaster/lucaria/pkg/db"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	minSecretBytes = 32
)

type Config struct {
	ServerPort int
	LogLevel   string

	DBDriver    string
	DatabaseURL string

	JWTSecret     []byte
	SecureCookies bool

	SessionBackend string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	AdminUsernames []string
}

// Load reads the optional .env file and the process environment. It exits
// the process when a required setting is missing or invalid.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := FromEnv()

	pkgcfg.MustMinBytes(cfg.JWTSecret, "JWT_SECRET", minSecretBytes)
	pkgcfg.MustOneOf(cfg.DBDriver, "DB_DRIVER", pkgdb.DriverSQLite, pkgdb.DriverPostgres)
	pkgcfg.MustOneOf(cfg.SessionBackend, "SESSION_BACKEND", SessionBackendMemory, SessionBackendRedis)
	if cfg.SessionBackend == SessionBackendRedis {
		pkgcfg.MustNonEmpty(cfg.RedisAddr, "REDIS_ADDR")
	}

	return cfg
}

// FromEnv maps environment variables onto Config without validation.
func FromEnv() Config {
	return Config{
		ServerPort: pkgcfg.EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:   pkgcfg.EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    pkgcfg.EnvDefault("DB_DRIVER", pkgdb.DriverSQLite),
		DatabaseURL: pkgcfg.EnvDefault("DATABASE_URL", "storefront.db"),

		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		SecureCookies: pkgcfg.EnvBoolDefault("SECURE_COOKIES", true),

		SessionBackend: pkgcfg.EnvDefault("SESSION_BACKEND", SessionBackendMemory),
		SessionTTL:     pkgcfg.EnvDurationDefault("SESSION_TTL", 24*time.Hour),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        pkgcfg.EnvIntDefault("REDIS_DB", 0),

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    pkgcfg.EnvDefault("ES_INDEX", "products"),

		AdminUsernames: pkgcfg.CSV(os.Getenv("ADMIN_USERNAMES")),
	}
}
