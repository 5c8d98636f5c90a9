package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel string
	GinMode  string
	Port     string

	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBTimeout         time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogLevel        string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	SessionSecret string
	JWTSecret     string
	JWTTTL        time.Duration

	FrontendURL    string
	AllowedOrigins []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	RecaptchaSecret  string
	LoginMaxAttempts int
	LoginLockout     time.Duration
}

var defaults = map[string]any{
	"APP_ENV":   "development",
	"LOG_LEVEL": "info",
	"GIN_MODE":  "debug",
	"PORT":      "5001",

	"DB_DRIVER":            "mysql",
	"DB_HOST":              "localhost",
	"DB_PORT":              "3306",
	"DB_USER":              "todouser",
	"DB_PASSWORD":          "todopassword",
	"DB_NAME":              "todo_app",
	"DB_TIMEOUT":           "5s",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": "30m",
	"DB_LOG_LEVEL":         "warn",

	"REDIS_HOST":     "",
	"REDIS_PORT":     "6379",
	"REDIS_PASSWORD": "",

	"SESSION_SECRET": "default-secret-key-change-me",
	"JWT_SECRET":     "default-jwt-secret-change-me",
	"JWT_TTL":        "168h",

	"FRONTEND_URL":    "http://localhost:3000",
	"ALLOWED_ORIGINS": "http://localhost:3000",

	"GOOGLE_CLIENT_ID":     "",
	"GOOGLE_CLIENT_SECRET": "",
	"GOOGLE_CALLBACK_URL":  "http://localhost:5001/api/auth/google/callback",

	"RECAPTCHA_SECRET":   "",
	"LOGIN_MAX_ATTEMPTS": 5,
	"LOGIN_LOCKOUT":      "15m",
}

// Load reads configuration from the environment. A .env file in the working
// directory and an optional config.yaml are read first; real environment
// variables always win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppEnv:   v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		GinMode:  v.GetString("GIN_MODE"),
		Port:     v.GetString("PORT"),

		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBTimeout:         v.GetDuration("DB_TIMEOUT"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		DBLogLevel:        v.GetString("DB_LOG_LEVEL"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		SessionSecret: v.GetString("SESSION_SECRET"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTTTL:        v.GetDuration("JWT_TTL"),

		FrontendURL:    strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),

		GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  v.GetString("GOOGLE_CALLBACK_URL"),

		RecaptchaSecret:  v.GetString("RECAPTCHA_SECRET"),
		LoginMaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginLockout:     v.GetDuration("LOGIN_LOCKOUT"),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// RedisAddr returns host:port, or "" when redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

// GoogleEnabled reports whether the Google OAuth flow can be offered.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
