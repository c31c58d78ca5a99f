package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	FeatureSourceFile  = "file"
	FeatureSourceRedis = "redis"
)

type Config struct {
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	FeatureSource   string
	FeatureFile     string
	FeatureRedisKey string

	RateCardCacheTTLSecs int
	GuardTTLSecs         int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the process environment, after merging a .env file when present.
func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		LogLevel:  getenv("LOG_LEVEL", "info"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lending"),
		MySQLUser: getenv("MYSQL_USER", "lending"),
		MySQLPass: getenv("MYSQL_PASS", "lending"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getenvInt("REDIS_DB", 0),

		FeatureSource:   getenv("FEATURE_SOURCE", FeatureSourceFile),
		FeatureFile:     getenv("FEATURE_CONFIG_PATH", "configs/feature.yaml"),
		FeatureRedisKey: getenv("FEATURE_REDIS_KEY", "lending:feature:v1"),

		RateCardCacheTTLSecs: getenvInt("RATE_CARD_CACHE_TTL_SECONDS", 600),
		GuardTTLSecs:         getenvInt("SUBMISSION_GUARD_TTL_SECONDS", 300),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	switch c.FeatureSource {
	case FeatureSourceFile:
		if c.FeatureFile == "" {
			return errors.New("missing FEATURE_CONFIG_PATH")
		}
	case FeatureSourceRedis:
		if c.RedisAddr == "" || c.FeatureRedisKey == "" {
			return errors.New("missing REDIS_ADDR/FEATURE_REDIS_KEY for redis feature source")
		}
	default:
		return fmt.Errorf("unknown FEATURE_SOURCE %q", c.FeatureSource)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps due dates stable
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) RateCardCacheTTL() time.Duration {
	return time.Duration(c.RateCardCacheTTLSecs) * time.Second
}

func (c *Config) GuardTTL() time.Duration { return time.Duration(c.GuardTTLSecs) * time.Second }
