package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Auth       AuthConfig
	BruteForce BruteForceConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	CheckoutTokenTTL    time.Duration
	TimingDelayBaseMs   int
	TimingDelayRandomMs int
}

// BruteForceConfig tunes the login attempt guard. The IP track and the
// IP+email track carry independent thresholds; the IP track is looser since
// many legitimate users can share an office NAT.
type BruteForceConfig struct {
	IPMaxAttempts    int
	EmailMaxAttempts int
	LockoutBase      time.Duration // First lockout length
	LockoutMax       time.Duration // Cap for escalated lockouts
	EscalationWindow time.Duration // Re-offense inside this window doubles the lockout
	InactivityWindow time.Duration // Records idle this long are treated as absent
	SweepInterval    time.Duration // Background janitor cadence
	Backend          string        // "memory" or "redis"
	RedisAddr        string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	// Malformed TTLs are fatal here, never silently defaulted per request.
	accessTTL, err := auth.ParseExpiration(getEnv("JWT_ACCESS_EXPIRES_IN", "15m"))
	if err != nil {
		return nil, fmt.Errorf("JWT_ACCESS_EXPIRES_IN: %w", err)
	}
	refreshTTL, err := auth.ParseExpiration(getEnv("JWT_REFRESH_EXPIRES_IN", "7d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_REFRESH_EXPIRES_IN: %w", err)
	}
	checkoutTTL, err := auth.ParseExpiration(getEnv("JWT_CHECKOUT_EXPIRES_IN", "30m"))
	if err != nil {
		return nil, fmt.Errorf("JWT_CHECKOUT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "authgate"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Auth: AuthConfig{
			JWTSecret:           jwtSecret,
			AccessTokenTTL:      accessTTL,
			RefreshTokenTTL:     refreshTTL,
			CheckoutTokenTTL:    checkoutTTL,
			TimingDelayBaseMs:   getEnvAsInt("TIMING_DELAY_BASE_MS", 100),
			TimingDelayRandomMs: getEnvAsInt("TIMING_DELAY_RANDOM_MS", 50),
		},
		BruteForce: BruteForceConfig{
			IPMaxAttempts:    getEnvAsInt("BRUTE_FORCE_IP_MAX_ATTEMPTS", 20),
			EmailMaxAttempts: getEnvAsInt("BRUTE_FORCE_EMAIL_MAX_ATTEMPTS", 5),
			LockoutBase:      getEnvAsDuration("BRUTE_FORCE_LOCKOUT_BASE", 15*time.Minute),
			LockoutMax:       getEnvAsDuration("BRUTE_FORCE_LOCKOUT_MAX", 24*time.Hour),
			EscalationWindow: getEnvAsDuration("BRUTE_FORCE_ESCALATION_WINDOW", 24*time.Hour),
			InactivityWindow: getEnvAsDuration("BRUTE_FORCE_INACTIVITY_WINDOW", 24*time.Hour),
			SweepInterval:    getEnvAsDuration("BRUTE_FORCE_SWEEP_INTERVAL", 5*time.Minute),
			Backend:          getEnv("BRUTE_FORCE_BACKEND", "memory"),
			RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.BruteForce.Backend != "memory" && cfg.BruteForce.Backend != "redis" {
		return nil, fmt.Errorf("BRUTE_FORCE_BACKEND must be \"memory\" or \"redis\", got %q", cfg.BruteForce.Backend)
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16 // Development minimum
	if env == "production" {
		minLength = 32 // 256 bits
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
