package config

import (
	"os"
	"strconv"
	"time"
)

type AppConfig struct {
	HTTPAddr       string
	RedisAddr      string
	RedisPass      string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBPort         string
	DBName         string
	LedgerBaseURL  string
	LedgerToken    string
	LedgerTimeout  time.Duration
	ExecuteTimeout time.Duration
	FlowIdleTTL    time.Duration
	JWTSecret      string
	UploadDir      string
}

func Load() AppConfig {
	return AppConfig{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8031"),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:      getEnv("REDIS_PASS", ""),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBHost:         getEnv("DB_HOST", "postgres"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBName:         getEnv("DB_NAME", "walletflow"),
		LedgerBaseURL:  getEnv("LEDGER_BASE_URL", "http://ledger:8080"),
		LedgerToken:    getEnv("LEDGER_SERVICE_TOKEN", ""),
		LedgerTimeout:  getEnvDuration("LEDGER_TIMEOUT_SECONDS", 15),
		ExecuteTimeout: getEnvDuration("EXECUTE_TIMEOUT_SECONDS", 30),
		FlowIdleTTL:    getEnvDuration("FLOW_IDLE_TTL_SECONDS", 1800),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "/app/uploads"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallbackSeconds int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return time.Duration(fallbackSeconds) * time.Second
}
