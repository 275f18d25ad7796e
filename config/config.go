package config

import (
	"fmt"
	"strings"
	"time"

	"foodonline-api/models"

	"github.com/glebarez/sqlite"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds everything main needs to wire the API.
type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver string
	DBDSN    string

	// JWTSecret signs session JWTs and activation/reset tokens
	JWTSecret      string
	SessionTTL     time.Duration
	TokenTTL       time.Duration
	ResetWindowTTL time.Duration
	BcryptCost     int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	Email EmailConfig

	SiteURL   string
	MediaRoot string

	RateLimit float64
	RateBurst int
}

// EmailConfig configures outgoing SMTP. An empty host means mail is only logged.
type EmailConfig struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// Configured reports whether enough SMTP settings exist to send real mail.
func (e EmailConfig) Configured() bool {
	return e.SMTPHost != "" && e.FromEmail != ""
}

const devSecret = "foodonline_dev_secret_change_me"

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; a missing file is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "foodonline.db")
	v.SetDefault("JWT_SECRET", devSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("TOKEN_TTL", "72h")
	v.SetDefault("RESET_WINDOW_TTL", "10m")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("FROM_EMAIL", "")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("RATE_LIMIT", 5.0)
	v.SetDefault("RATE_BURST", 10)

	cfg := &Config{
		Port:          v.GetString("PORT"),
		GinMode:       v.GetString("GIN_MODE"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		DBDriver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:         v.GetString("DB_DSN"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		BcryptCost:    v.GetInt("BCRYPT_COST"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		Email: EmailConfig{
			SMTPHost:  v.GetString("SMTP_HOST"),
			SMTPPort:  v.GetInt("SMTP_PORT"),
			SMTPUser:  v.GetString("SMTP_USER"),
			SMTPPass:  v.GetString("SMTP_PASS"),
			FromEmail: v.GetString("FROM_EMAIL"),
		},
		SiteURL:   strings.TrimRight(v.GetString("SITE_URL"), "/"),
		MediaRoot: v.GetString("MEDIA_ROOT"),
		RateLimit: v.GetFloat64("RATE_LIMIT"),
		RateBurst: v.GetInt("RATE_BURST"),
	}

	var err error
	if cfg.SessionTTL, err = parseDuration(v, "SESSION_TTL"); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = parseDuration(v, "TOKEN_TTL"); err != nil {
		return nil, err
	}
	if cfg.ResetWindowTTL, err = parseDuration(v, "RESET_WINDOW_TTL"); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST %d out of range", cfg.BcryptCost)
	}
	return cfg, nil
}

// UsingDevSecret is true when JWT_SECRET was left at the built-in fallback.
func (c *Config) UsingDevSecret() bool {
	return c.JWTSecret == devSecret
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// OpenDB connects to the configured database and auto-migrates all models.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		normalized, err := normalizeMySQLDSN(dsn)
		if err != nil {
			return nil, err
		}
		dialector = gormmysql.Open(normalized)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if driver == "" || driver == "sqlite" {
		// sqlite allows one writer; a single connection also keeps :memory: databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Vendor{},
		&models.OpeningHour{},
		&models.Category{},
		&models.FoodItem{},
		&models.Tax{},
		&models.Cart{},
		&models.Payment{},
		&models.Order{},
		&models.OrderedFood{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func normalizeMySQLDSN(dsn string) (string, error) {
	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	return parsed.FormatDSN(), nil
}
