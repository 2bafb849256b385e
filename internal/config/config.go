package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	RedisDialTimeout       time.Duration
	CORSAllowOrigins       string
	AccessLog              bool
	MetricsToken           string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	SummaryCacheTTL        time.Duration
	ResumeMaxSizeMB        int
	ApplyRateLimit         int
	ApplyRateWindow        time.Duration
	DefaultPageSize        int
	MaxPageSize            int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("REFERRAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Referral API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("http.access_log", true)
	v.SetDefault("cloudinary.folder", "referral/resumes")
	v.SetDefault("summary.cache_ttl", "2m")
	v.SetDefault("resume.max_size_mb", 5)
	v.SetDefault("apply.rate_limit", 10)
	v.SetDefault("apply.rate_window", "1m")
	v.SetDefault("pagination.default_size", 10)
	v.SetDefault("pagination.max_size", 50)

	cacheTTL, err := parseDuration(v.GetString("summary.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid summary cache ttl: %w", err)
	}

	rateWindow, err := parseDuration(v.GetString("apply.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid apply rate window: %w", err)
	}

	redisTimeout, err := parseDuration(v.GetString("redis.dial_timeout"), 5*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid redis dial timeout: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		RedisDialTimeout:       redisTimeout,
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		AccessLog:              v.GetBool("http.access_log"),
		MetricsToken:           v.GetString("metrics.token"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		SummaryCacheTTL:        cacheTTL,
		ResumeMaxSizeMB:        v.GetInt("resume.max_size_mb"),
		ApplyRateLimit:         v.GetInt("apply.rate_limit"),
		ApplyRateWindow:        rateWindow,
		DefaultPageSize:        v.GetInt("pagination.default_size"),
		MaxPageSize:            v.GetInt("pagination.max_size"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.ResumeMaxSizeMB <= 0 {
		cfg.ResumeMaxSizeMB = 5
	}

	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}

	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
