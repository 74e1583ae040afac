// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/cicd-demo/internal/platform/logging"
)

// DotEnvFile is read from the working directory when present. Variables
// already set in the environment take precedence over the file.
const DotEnvFile = ".env"

// Config holds all runtime configuration. Every field has a default.
type Config struct {
	// Server
	Port              int
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MaxRequestBytes   int64

	LogLevel zapcore.Level

	// CORS; empty allows any origin.
	AllowedOrigins []string

	// Global token bucket; a zero rate disables limiting.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Addr is the listen address for Port on all interfaces.
func (c *Config) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// Load reads DotEnvFile (if any) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	port, err := getPort("PORT", 8080)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	rps := getFloat("RATE_LIMIT_RPS", 0)
	if rps < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", rps)
	}

	return &Config{
		Port:              port,
		ReadTimeout:       getDuration("READ_TIMEOUT", 5*time.Second),
		ReadHeaderTimeout: getDuration("READ_HEADER_TIMEOUT", 2*time.Second),
		WriteTimeout:      getDuration("WRITE_TIMEOUT", 10*time.Second),
		IdleTimeout:       getDuration("IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBytes:   int64(getPositiveInt("MAX_REQUEST_BYTES", 1<<20)),

		LogLevel: level,

		AllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),

		RateLimitRPS:   rps,
		RateLimitBurst: max(0, getInt("RATE_LIMIT_BURST", 0)),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getPositiveInt(key string, defaultVal int) int {
	if n := getInt(key, defaultVal); n > 0 {
		return n
	}
	return defaultVal
}

// getFloat treats NaN and infinities as malformed.
func getFloat(key string, defaultVal float64) float64 {
	if v := getEnv(key, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := getEnv(key, ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

// getPort is strict: a port that cannot be bound is a startup error, not
// something to paper over with the default.
func getPort(key string, defaultVal int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid port %q: %w", key, v, err)
	}
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("%s: port %d out of range 1..65535", key, n)
	}
	return n, nil
}

func getList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
