package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains settings for the per-vehicle admission lock
type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	DB   int    `yaml:"db"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// JWTConfig contains token verification settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig exposes the booking-engine constants as named
// configuration with documented defaults, so tests can override them
// without code changes.
type BookingConfig struct {
	// Pricing
	WeekendSurchargeRate float64 `yaml:"weekend_surcharge_rate"` // default 0.15
	ServiceFeeRate       float64 `yaml:"service_fee_rate"`       // default 0.10
	WeeklyDiscountDays   int     `yaml:"weekly_discount_days"`   // default 7
	WeeklyDiscountRate   float64 `yaml:"weekly_discount_rate"`   // default 0.10
	BiweeklyDiscountDays int     `yaml:"biweekly_discount_days"` // default 14
	BiweeklyDiscountRate float64 `yaml:"biweekly_discount_rate"` // default 0.15
	PriceTolerance       int64   `yaml:"price_tolerance"`        // default 1

	// Admission limits
	MinRentalDays  int `yaml:"min_rental_days"`  // default 1
	MaxRentalDays  int `yaml:"max_rental_days"`  // default 30
	MaxAdvanceDays int `yaml:"max_advance_days"` // default 90

	// Lifecycle
	CancellationWindowHours int `yaml:"cancellation_window_hours"` // default 24

	// Mileage
	DefaultMileageLimitPerDay int32 `yaml:"default_mileage_limit_per_day"` // default 200
	DefaultExtraMileageRate   int64 `yaml:"default_extra_mileage_rate"`    // default 5000

	// Abuse prevention
	MaxPendingPayments        int `yaml:"max_pending_payments"`         // default 3
	PendingPaymentWindowMins  int `yaml:"pending_payment_window_mins"`  // default 30
	MaxRecentCancellations    int `yaml:"max_recent_cancellations"`     // default 5
	RecentCancellationDays    int `yaml:"recent_cancellation_days"`     // default 7

	// Retention for the cancelled-booking purge job
	CancelledRetentionDays int `yaml:"cancelled_retention_days"` // default 90
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	PurgeCancelledBookings    string `yaml:"purge_cancelled_bookings"`
	ExpireStalePaymentPending string `yaml:"expire_stale_payment_pending"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Redis
	if val := os.Getenv("REDIS_HOST"); val != "" {
		c.Redis.Host = val
	}
	if val := os.Getenv("REDIS_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Redis.Port)
	}

	// SMTP
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.SMTP.From = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Redis defaults
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	c.Booking.applyDefaults()

	// Scheduler defaults
	if c.Scheduler.PurgeCancelledBookings == "" {
		c.Scheduler.PurgeCancelledBookings = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.ExpireStalePaymentPending == "" {
		c.Scheduler.ExpireStalePaymentPending = "0 */10 * * * *" // every 10 minutes
	}

	return nil
}

func (b *BookingConfig) applyDefaults() {
	if b.WeekendSurchargeRate == 0 {
		b.WeekendSurchargeRate = 0.15
	}
	if b.ServiceFeeRate == 0 {
		b.ServiceFeeRate = 0.10
	}
	if b.WeeklyDiscountDays == 0 {
		b.WeeklyDiscountDays = 7
	}
	if b.WeeklyDiscountRate == 0 {
		b.WeeklyDiscountRate = 0.10
	}
	if b.BiweeklyDiscountDays == 0 {
		b.BiweeklyDiscountDays = 14
	}
	if b.BiweeklyDiscountRate == 0 {
		b.BiweeklyDiscountRate = 0.15
	}
	if b.PriceTolerance == 0 {
		b.PriceTolerance = 1
	}
	if b.MinRentalDays == 0 {
		b.MinRentalDays = 1
	}
	if b.MaxRentalDays == 0 {
		b.MaxRentalDays = 30
	}
	if b.MaxAdvanceDays == 0 {
		b.MaxAdvanceDays = 90
	}
	if b.CancellationWindowHours == 0 {
		b.CancellationWindowHours = 24
	}
	if b.DefaultMileageLimitPerDay == 0 {
		b.DefaultMileageLimitPerDay = 200
	}
	if b.DefaultExtraMileageRate == 0 {
		b.DefaultExtraMileageRate = 5000
	}
	if b.MaxPendingPayments == 0 {
		b.MaxPendingPayments = 3
	}
	if b.PendingPaymentWindowMins == 0 {
		b.PendingPaymentWindowMins = 30
	}
	if b.MaxRecentCancellations == 0 {
		b.MaxRecentCancellations = 5
	}
	if b.RecentCancellationDays == 0 {
		b.RecentCancellationDays = 7
	}
	if b.CancelledRetentionDays == 0 {
		b.CancelledRetentionDays = 90
	}
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetRedisAddress returns the Redis address
func (c *Config) GetRedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
