package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Admission AdmissionConfig
	Payment   PaymentConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CacheConfig struct {
	OpTimeout          time.Duration // per redis command before falling back to origin
	AvailabilityTTL    time.Duration
	SearchTTL          time.Duration
	QueuePositionFresh time.Duration
	QueuePositionStale time.Duration
}

type AdmissionConfig struct {
	OfferWindow  time.Duration // how long an offered entry stays valid
	SweepBatch   int
	PromoteBatch int
}

type PaymentConfig struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Database:  GetDatabaseConfig(),
		Redis:     GetRedisConfig(),
		Cache:     GetCacheConfig(),
		Admission: GetAdmissionConfig(),
		Payment:   GetPaymentConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5433",
			User:     "postgres",
			Password: "postgres",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380",
			Password: "",
			DB:       1,
		},
		Cache: CacheConfig{
			OpTimeout:          150 * time.Millisecond,
			AvailabilityTTL:    5 * time.Second,
			SearchTTL:          30 * time.Second,
			QueuePositionFresh: 5 * time.Second,
			QueuePositionStale: 2 * time.Minute,
		},
		Admission: AdmissionConfig{
			OfferWindow:  24 * time.Hour,
			SweepBatch:   100,
			PromoteBatch: 100,
		},
		Payment: PaymentConfig{
			BaseURL: "http://localhost:9999",
			Secret:  "test",
			Timeout: time.Second,
		},
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetCacheConfig() CacheConfig {
	return CacheConfig{
		OpTimeout:          getEnvDuration("CACHE_OP_TIMEOUT", 150*time.Millisecond),
		AvailabilityTTL:    getEnvDuration("AVAILABILITY_TTL", 10*time.Second),
		SearchTTL:          getEnvDuration("SEARCH_TTL", time.Minute),
		QueuePositionFresh: getEnvDuration("QUEUE_POSITION_FRESH_TTL", 10*time.Second),
		QueuePositionStale: getEnvDuration("QUEUE_POSITION_STALE_TTL", 5*time.Minute),
	}
}

func GetAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{
		OfferWindow:  getEnvDuration("OFFER_WINDOW", 24*time.Hour),
		SweepBatch:   getEnvInt("SWEEP_BATCH", 100),
		PromoteBatch: getEnvInt("PROMOTE_BATCH", 100),
	}
}

func GetPaymentConfig() PaymentConfig {
	return PaymentConfig{
		BaseURL: getEnv("PAYMENT_BASE_URL", "http://localhost:9000"),
		Secret:  getEnv("PAYMENT_SECRET", ""),
		Timeout: getEnvDuration("PAYMENT_TIMEOUT", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}
	return d
}
