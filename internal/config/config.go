package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-workforce/internal/domain/policy"
	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Policy   policy.Policy
}

// DatabaseConfig holds PostgreSQL configuration. When neither URL nor Host is
// set the API runs on the in-memory store.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	Location       *time.Location
	AllowedOrigins []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type StorageConfig struct {
	BasePath string
	BaseURL  string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", ""),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-workforce"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	timezone := getEnv("APP_TIMEZONE", "Asia/Jakarta")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       timezone,
		Location:       location,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Redis configuration, optional
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	redisTTL, err := getEnvDuration("REDIS_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		TTL:      redisTTL,
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", "/uploads"),
	}

	if config.Policy, err = loadPolicy(); err != nil {
		return nil, err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadPolicy() (policy.Policy, error) {
	p := policy.Default()

	var err error
	if p.DefaultMonthlyWorkDays, err = getEnvInt("POLICY_DEFAULT_MONTHLY_WORK_DAYS", p.DefaultMonthlyWorkDays); err != nil {
		return p, err
	}
	if p.AnnualEntitlement, err = getEnvInt("POLICY_ANNUAL_ENTITLEMENT", p.AnnualEntitlement); err != nil {
		return p, err
	}
	if p.SickEntitlement, err = getEnvInt("POLICY_SICK_ENTITLEMENT", p.SickEntitlement); err != nil {
		return p, err
	}
	if p.CheckInTolerance, err = getEnvDuration("POLICY_CHECK_IN_TOLERANCE", p.CheckInTolerance); err != nil {
		return p, err
	}
	if p.EarlyCheckInBuffer, err = getEnvDuration("POLICY_EARLY_CHECK_IN_BUFFER", p.EarlyCheckInBuffer); err != nil {
		return p, err
	}

	if raw := getEnv("POLICY_DEFAULT_WORK_WEEK", ""); raw != "" {
		week, err := parseWeekdays(raw)
		if err != nil {
			return p, fmt.Errorf("invalid POLICY_DEFAULT_WORK_WEEK: %w", err)
		}
		p.DefaultWorkWeek = week
	}

	return p, nil
}

// parseWeekdays reads a comma separated list of weekday numbers, 0 being Sunday.
func parseWeekdays(raw string) ([]time.Weekday, error) {
	var week []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if n < 0 || n > 6 {
			return nil, fmt.Errorf("weekday %d out of range", n)
		}
		week = append(week, time.Weekday(n))
	}
	return week, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Database.URL == "" && c.Database.Host != "" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_HOST is set")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}
	if c.Storage.BasePath == "" {
		return fmt.Errorf("STORAGE_BASE_PATH is required")
	}
	if c.Policy.DefaultMonthlyWorkDays <= 0 {
		return fmt.Errorf("POLICY_DEFAULT_MONTHLY_WORK_DAYS must be positive")
	}
	if c.Policy.AnnualEntitlement < 0 || c.Policy.SickEntitlement < 0 {
		return fmt.Errorf("leave entitlements must not be negative")
	}
	if len(c.Policy.DefaultWorkWeek) == 0 {
		return fmt.Errorf("POLICY_DEFAULT_WORK_WEEK must list at least one day")
	}
	return nil
}

// UseDatabase reports whether PostgreSQL is configured.
func (c *Config) UseDatabase() bool {
	return c.Database.URL != "" || c.Database.Host != ""
}

// UseRedis reports whether the shift cache should be enabled.
func (c *Config) UseRedis() bool {
	return c.Redis.Addr != ""
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
