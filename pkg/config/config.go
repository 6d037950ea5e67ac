package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
	DriverMemory    = "memory"
)

type Config struct {
	ServerPort  string
	Environment string

	StoreDriver     string
	DatabaseURL     string
	DBMaxOpenConns  int
	FirebaseProject string
	FirebaseAPIKey  string
	// FirebaseCredentialsFile and FirebaseServiceAccountJSON are alternatives;
	// the JSON wins when both are set.
	FirebaseCredentialsFile    string
	FirebaseServiceAccountJSON string
	StorageBucket              string

	CommissionRate decimal.Decimal

	RateLimitRPS   float64
	RateLimitBurst int

	AllowedOrigins []string

	MaxAvatarBytes   int64
	MaxPlanFileBytes int64
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	rate, err := decimal.NewFromString(getEnv("COMMISSION_RATE", "0.10"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:                 getEnv("SERVER_PORT", "8080"),
		Environment:                getEnv("ENVIRONMENT", "development"),
		StoreDriver:                strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL:                getEnv("DATABASE_URL", "postgres://localhost:5432/planmarket?sslmode=disable"),
		DBMaxOpenConns:             int(getEnvAsInt64("DB_MAX_OPEN_CONNS", 10)),
		FirebaseProject:            getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseAPIKey:             getEnv("FIREBASE_API_KEY", ""),
		FirebaseCredentialsFile:    getEnv("FIREBASE_CREDENTIALS_FILE", "./firebase-service-account.json"),
		FirebaseServiceAccountJSON: getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		StorageBucket:              getEnv("STORAGE_BUCKET", ""),
		CommissionRate:             rate,
		RateLimitRPS:               getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:             int(getEnvAsInt64("RATE_LIMIT_BURST", 10)),
		AllowedOrigins:             strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		MaxAvatarBytes:             getEnvAsInt64("MAX_AVATAR_BYTES", 5<<20),
		MaxPlanFileBytes:           getEnvAsInt64("MAX_PLAN_FILE_BYTES", 50<<20),
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
