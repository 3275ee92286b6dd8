package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	App       AppConfig
	Employee  EmployeeConfig
	Slot      SlotConfig
	Geofence  GeofenceConfig
	Remote    RemoteConfig
	Cron      CronConfig
	RateLimit RateLimitConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	WeekStart   time.Weekday
	CORSOrigins []string
}

// EmployeeConfig identifies the session the agent serves
type EmployeeConfig struct {
	ID       string
	BranchID string
}

// SlotConfig selects where the attendance record is persisted
type SlotConfig struct {
	Driver string
	Key    string
	Dir    string
}

// GeofenceConfig holds the work-location settings
type GeofenceConfig struct {
	RadiusMeters  float64
	LocationsFile string
}

// RemoteConfig holds the HRIS backend client settings
type RemoteConfig struct {
	BaseURL  string
	Token    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type CronConfig struct {
	RolloverInterval time.Duration
}

type RateLimitConfig struct {
	LocationPerSec float64
	LocationBurst  int
	// RequestsPerMinute caps each client across the whole API; 0 disables it.
	RequestsPerMinute int
}

const (
	SlotDriverMemory   = "memory"
	SlotDriverFile     = "file"
	SlotDriverPostgres = "postgres"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "field_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	weekStart, err := parseWeekday(getEnv("WEEK_START", "monday"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEK_START: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Local"),
		WeekStart:   weekStart,
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.Employee = EmployeeConfig{
		ID:       getEnv("EMPLOYEE_ID", ""),
		BranchID: getEnv("BRANCH_ID", ""),
	}

	config.Slot = SlotConfig{
		Driver: strings.ToLower(getEnv("SLOT_DRIVER", SlotDriverMemory)),
		Key:    getEnv("SLOT_KEY", ""),
		Dir:    getEnv("SLOT_DIR", "data/slots"),
	}

	// Geofence configuration
	radius, err := strconv.ParseFloat(getEnv("GEOFENCE_RADIUS_METERS", "100"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GEOFENCE_RADIUS_METERS: %w", err)
	}

	config.Geofence = GeofenceConfig{
		RadiusMeters:  radius,
		LocationsFile: getEnv("WORK_LOCATIONS_FILE", "config/locations.yaml"),
	}

	// Remote API configuration
	timeout, err := time.ParseDuration(getEnv("REMOTE_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("HISTORY_CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_CACHE_TTL: %w", err)
	}

	config.Remote = RemoteConfig{
		BaseURL:  getEnv("REMOTE_BASE_URL", ""),
		Token:    getEnv("REMOTE_TOKEN", ""),
		Timeout:  timeout,
		CacheTTL: cacheTTL,
	}

	rolloverInterval, err := time.ParseDuration(getEnv("ROLLOVER_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROLLOVER_INTERVAL: %w", err)
	}
	config.Cron = CronConfig{RolloverInterval: rolloverInterval}

	ratePerSec, err := strconv.ParseFloat(getEnv("LOCATION_RATE_PER_SEC", "2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_RATE_PER_SEC: %w", err)
	}
	burst, err := strconv.Atoi(getEnv("LOCATION_RATE_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_RATE_BURST: %w", err)
	}
	perMinute, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "300"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	config.RateLimit = RateLimitConfig{
		LocationPerSec:    ratePerSec,
		LocationBurst:     burst,
		RequestsPerMinute: perMinute,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Employee.ID == "" {
		return fmt.Errorf("EMPLOYEE_ID is required")
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("REMOTE_BASE_URL is required")
	}
	switch c.Slot.Driver {
	case SlotDriverMemory, SlotDriverFile:
	case SlotDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required when SLOT_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unsupported SLOT_DRIVER %q", c.Slot.Driver)
	}
	if c.Cron.RolloverInterval <= 0 {
		return fmt.Errorf("ROLLOVER_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location resolves the configured timezone, falling back to the host zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		slog.Warn("Invalid APP_TIMEZONE, using host timezone", "timezone", c.App.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// SlotKey namespaces the persisted record by employee unless SLOT_KEY overrides it.
func (c *Config) SlotKey() string {
	if c.Slot.Key != "" {
		return c.Slot.Key
	}
	return "attendance_today:" + c.Employee.ID
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
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

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) || strings.EqualFold(d.String()[:3], s) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
