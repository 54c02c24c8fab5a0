package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects the Persistent Store implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendRedis  Backend = "redis"
	BackendMemory Backend = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Store
	Backend     Backend // sqlite | redis | memory
	SQLitePath  string  // ex: "./data/pathways.db"
	RedisPrefix string  // key namespace, ex: "pathways:"

	// Redis (only read when Backend == redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Background jobs (0 disables)
	AutoCommitInterval time.Duration // push pathways to the remote
	CommitDir          string        // root of the directory-backed remote
	LinkCheckInterval  time.Duration // audit bookmark links
	LinkCheckTimeout   time.Duration // per-link timeout
	SeedFile           string        // YAML imported when the store has no pathways

	// Access restrictions
	AllowedHosts []string // optional, restrict Host headers on /storage and /api
	AllowedCIDRS []string // optional, restrict health endpoints (e.g. "10.0.0.0/8, 127.0.0.1")
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	RateBurst    int      // per-IP burst on /storage
	RatePerMin   int      // per-IP sustained rate on /storage
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("PATHWAYS_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("PATHWAYS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("PATHWAYS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PATHWAYS_PRETTY_LOG", true),

		// Store
		Backend:     parseBackend(getenv("PATHWAYS_STORE_BACKEND", string(BackendSQLite))),
		SQLitePath:  getenv("PATHWAYS_SQLITE_PATH", "./data/pathways.db"),
		RedisPrefix: getenv("PATHWAYS_REDIS_PREFIX", "pathways:"),

		// Redis settings
		RedisUser:           getenv("PATHWAYS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("PATHWAYS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("PATHWAYS_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Background jobs
		AutoCommitInterval: mustDuration("PATHWAYS_AUTOCOMMIT_INTERVAL", 0),
		CommitDir:          getenv("PATHWAYS_COMMIT_DIR", "./data/commits"),
		LinkCheckInterval:  mustDuration("PATHWAYS_LINKCHECK_INTERVAL", 0),
		LinkCheckTimeout:   mustDuration("PATHWAYS_LINKCHECK_TIMEOUT", 5*time.Second),
		SeedFile:           getenv("PATHWAYS_SEED_FILE", ""),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("PATHWAYS_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("PATHWAYS_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("PATHWAYS_TRUST_PROXY", false),
		RateBurst:    getenvInt("PATHWAYS_RATE_BURST", 60),
		RatePerMin:   getenvInt("PATHWAYS_RATE_PER_MIN", 600),
	}

	if cfg.Backend == BackendRedis {
		cfg.RedisAddr = requireEnv("PATHWAYS_REDIS_ADDR")
	}

	return cfg
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	if c.RedisUser != "" {
		c.RedisUser = "***REDACTED***"
	}
	return c
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func parseBackend(v string) Backend {
	switch b := Backend(strings.ToLower(strings.TrimSpace(v))); b {
	case BackendSQLite, BackendRedis, BackendMemory:
		return b
	default:
		panic(fmt.Sprintf("❌ FATAL: PATHWAYS_STORE_BACKEND must be sqlite, redis or memory, got %q", v))
	}
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
