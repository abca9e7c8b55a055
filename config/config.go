package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-storefront/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds every runtime setting of the storefront backend.
type Config struct {
	Port    string
	GinMode string

	DBDriver string
	DBDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	CORSOrigin    string
	UploadDir     string
	PublicBaseURL string

	AMQPURL      string
	AMQPExchange string

	ChangePollInterval time.Duration
	ToggleStatusDelay  time.Duration
	ReturnWindowDays   int
	StoreTimezone      string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && utils.InfoLogger != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using process environment")
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:              getEnv("DB_DSN", "storefront.db"),
		JWTSecret:          getEnv("JWT_SECRET", "storefront-dev-secret"),
		TokenTTL:           getDuration("TOKEN_TTL", 24*time.Hour),
		CORSOrigin:         getEnv("CORS_ORIGIN", "http://127.0.0.1:5173"),
		UploadDir:          getEnv("UPLOAD_DIR", "public/uploads"),
		PublicBaseURL:      strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		AMQPURL:            os.Getenv("AMQP_URL"),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "storefront.changes"),
		ChangePollInterval: getDuration("CHANGE_POLL_INTERVAL", 500*time.Millisecond),
		ToggleStatusDelay:  getDuration("TOGGLE_STATUS_DELAY", 3*time.Second),
		ReturnWindowDays:   getInt("RETURN_WINDOW_DAYS", 30),
		StoreTimezone:      getEnv("STORE_TIMEZONE", "Local"),
		RateLimitRPS:       getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst:     getInt("RATE_LIMIT_BURST", 50),
	}
}

// Location is the store's time zone, used for opening hours.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.StoreTimezone)
	if err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE: %w", err)
	}
	return loc, nil
}

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	gormCfg := &gorm.Config{}
	if cfg.GinMode == "release" {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
