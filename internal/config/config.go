package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds all configuration for a service
type Config struct {
	Environment string
	ServiceName string
	Port        string
	DatabaseURL string

	// Token service
	JWTSecret string
	TokenTTL  time.Duration

	// Audit
	AuditQueueSize int

	// Redis ownership cache
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	CacheTTL      int // seconds

	// Events
	NATSURL string

	// Gateway
	ServiceURLs     map[string]string
	UpstreamTimeout time.Duration
	HealthTimeout   time.Duration
}

// Load loads configuration from environment variables
func Load(serviceName, defaultPort string) *Config {
	redisPort, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL", "60"))
	queueSize, _ := strconv.Atoi(getEnv("AUDIT_QUEUE_SIZE", "256"))

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServiceName: serviceName,
		Port:        getEnv("PORT", defaultPort),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  getDuration("TOKEN_TTL", 168*time.Hour),

		AuditQueueSize: queueSize,

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     redisPort,
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,
		CacheTTL:      cacheTTL,

		NATSURL: getEnv("NATS_URL", ""),

		ServiceURLs: map[string]string{
			"auth":         getEnv("AUTH_SERVICE_URL", "http://auth-service:8081"),
			"employee":     getEnv("EMPLOYEE_SERVICE_URL", "http://employee-service:8082"),
			"leave":        getEnv("LEAVE_SERVICE_URL", "http://leave-service:8083"),
			"payroll":      getEnv("PAYROLL_SERVICE_URL", "http://payroll-service:8084"),
			"notification": getEnv("NOTIFICATION_SERVICE_URL", "http://notification-service:8085"),
		},
		UpstreamTimeout: getDuration("UPSTREAM_TIMEOUT", 30*time.Second),
		HealthTimeout:   getDuration("HEALTH_TIMEOUT", 3*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// InitDB initializes the database connection
func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := cfg.DatabaseURL
	if dsn == "" {
		// Build DSN from individual components if DATABASE_URL not set
		host := getEnv("DB_HOST", "localhost")
		port := getEnv("DB_PORT", "5432")
		user := getEnv("DB_USER", "postgres")
		password := getEnv("DB_PASSWORD", "")
		dbname := getEnv("DB_NAME", cfg.ServiceName)
		sslmode := getEnv("DB_SSLMODE", "require")

		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode,
		)
	}

	logLevel := logger.Silent
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}
