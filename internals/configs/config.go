package configs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// =======================
// APP CONFIG
// =======================

type AppConfig struct {
	Port           string
	RequestTimeout time.Duration
	CorsOrigins    string

	Database DatabaseConfig

	JWTSecret      string
	LookupPageSize int
	BatchCodeSalt  string
	Timezone       string
}

type DatabaseConfig struct {
	URL         string
	User        string
	Password    string
	Host        string
	Port        string
	Name        string
	SSLMode     string
	AutoMigrate bool
	LogQueries  bool
	SeedFile    string
}

// DSN returns a key/value connection string. DATABASE_URL wins over the DB_* parts.
func (d DatabaseConfig) DSN() (string, error) {
	if strings.TrimSpace(d.URL) != "" {
		dsn, err := pq.ParseURL(strings.TrimSpace(d.URL))
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		return dsn + " application_name=examportal", nil
	}
	if d.Host == "" || d.Name == "" {
		return "", fmt.Errorf("database host/name not set (DATABASE_URL or DB_HOST + DB_NAME)")
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s application_name=examportal",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	), nil
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Warn("⚠️ .env file not found, using system ENV")
		} else {
			log.Info("✅ .env file loaded")
		}
	} else {
		log.Info("🚀 Running in Railway, using system ENV")
	}
}

// Load builds the typed config from the environment (after LoadEnv).
func Load() AppConfig {
	v := viper.New()
	v.SetDefault("PORT", "3000")
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("DB_LOG_QUERIES", false)
	v.SetDefault("LOOKUP_PAGE_SIZE", 1000)
	v.SetDefault("BATCH_CODE_SALT", "examportal mark upload batches")
	v.SetDefault("APP_TIMEZONE", "UTC")
	v.AutomaticEnv()

	cfg := AppConfig{
		Port:           v.GetString("PORT"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		CorsOrigins:    v.GetString("CORS_ALLOW_ORIGINS"),
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
			LogQueries:  v.GetBool("DB_LOG_QUERIES"),
			SeedFile:    v.GetString("DB_SEED_FILE"),
		},
		JWTSecret:      v.GetString("JWT_SECRET"),
		LookupPageSize: v.GetInt("LOOKUP_PAGE_SIZE"),
		BatchCodeSalt:  v.GetString("BATCH_CODE_SALT"),
		Timezone:       v.GetString("APP_TIMEZONE"),
	}

	if cfg.LookupPageSize <= 0 {
		cfg.LookupPageSize = 1000
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.JWTSecret == "" {
		log.Warn("❌ JWT_SECRET not set, uploader attribution falls back to request body")
	}
	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
	LogQueries    bool
}

func NewGormLogger(logQueries bool) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
		LogQueries:    logQueries,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormLogger.Error:
		log.Errorw("[SQL ERROR]", "file", file, "err", err, "elapsed", elapsed, "rows", rows, "sql", sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Warnw("[SLOW SQL]", "file", file, "elapsed", elapsed, "rows", rows, "sql", sql)
	case l.LogQueries:
		log.Debugw("[QUERY]", "file", file, "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
