package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	// EnvFileLoaded is false when no .env file was read. Callers log it once
	// logging is set up.
	EnvFileLoaded bool

	Env        string
	LogLevel   string
	ServerPort string

	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MongoURI string
	MongoDB  string

	RedisURL string

	JWTSecret     string
	TokenMaxAge   int
	ResetTokenTTL int

	ClientURL string

	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	GithubToken    string
	GithubAPIURL   string
	GithubCacheTTL int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	RateLimitAuth   int
	RateLimitWindow int
	RequestTimeout  int
}

func LoadConfig() (*Config, error) {
	envErr := godotenv.Load()

	cfg := &Config{
		EnvFileLoaded: envErr == nil,

		Env:        getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "devconnector"),

		RedisURL: os.Getenv("REDIS_URL"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenMaxAge:   getEnvInt("TOKEN_MAX_AGE", 3*24*60*60),
		ResetTokenTTL: getEnvInt("RESET_TOKEN_TTL", 4*60*60),

		ClientURL: strings.TrimSuffix(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@devconnector.local"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "DevConnector"),

		GithubToken:    os.Getenv("GITHUB_TOKEN"),
		GithubAPIURL:   strings.TrimSuffix(getEnv("GITHUB_API_URL", "https://api.github.com"), "/"),
		GithubCacheTTL: getEnvInt("GITHUB_CACHE_TTL", 600),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		RateLimitAuth:   getEnvInt("RATE_LIMIT_AUTH", 20),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
		RequestTimeout:  getEnvInt("REQUEST_TIMEOUT", 15),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case DriverPostgres:
		var missing []string
		for name, v := range map[string]string{"DB_HOST": c.DBHost, "DB_USER": c.DBUser, "DB_NAME": c.DBName} {
			if v == "" {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return fmt.Errorf("%s required for STORE_DRIVER=postgres", strings.Join(missing, ", "))
		}
	case DriverMongo:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// MediaEnabled reports whether object storage for avatars is configured.
func (c *Config) MediaEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenMaxAge) * time.Second
}

func (c *Config) ResetTTL() time.Duration {
	return time.Duration(c.ResetTokenTTL) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
