package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server and the CLI read from the environment.
type Config struct {
	Port        string
	DatabaseURL string
	DBMaxConns  int
	AutoMigrate bool

	AWSRegion   string
	S3Bucket    string
	S3Prefix    string
	S3Endpoint  string
	S3PathStyle bool

	SyncConcurrency int
	SpeciesCacheTTL time.Duration

	TrainingTriggerURL string
	TrainingTotalSteps int

	CORSOrigins   []string
	AuthJWTSecret string
	LogLevel      string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8001")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5433")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "Netzero")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "images2")
	v.SetDefault("S3_PATH_STYLE", false)
	v.SetDefault("SYNC_CONCURRENCY", 1)
	v.SetDefault("SPECIES_CACHE_TTL", "5m")
	v.SetDefault("TRAINING_TOTAL_STEPS", 5)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:               v.GetString("PORT"),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBMaxConns:         v.GetInt("DB_MAX_CONNS"),
		AutoMigrate:        v.GetBool("AUTO_MIGRATE"),
		AWSRegion:          v.GetString("AWS_REGION"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Prefix:           v.GetString("S3_PREFIX"),
		S3Endpoint:         v.GetString("S3_ENDPOINT"),
		S3PathStyle:        v.GetBool("S3_PATH_STYLE"),
		SyncConcurrency:    v.GetInt("SYNC_CONCURRENCY"),
		SpeciesCacheTTL:    v.GetDuration("SPECIES_CACHE_TTL"),
		TrainingTriggerURL: v.GetString("TRAINING_TRIGGER_URL"),
		TrainingTotalSteps: v.GetInt("TRAINING_TOTAL_STEPS"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		AuthJWTSecret:      v.GetString("AUTH_JWT_SECRET"),
		LogLevel:           strings.ToLower(v.GetString("LOG_LEVEL")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDSN(v)
	}
	if cfg.SyncConcurrency < 1 {
		return nil, fmt.Errorf("SYNC_CONCURRENCY must be at least 1, got %d", cfg.SyncConcurrency)
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", cfg.DBMaxConns)
	}
	if cfg.TrainingTotalSteps < 1 {
		return nil, fmt.Errorf("TRAINING_TOTAL_STEPS must be at least 1, got %d", cfg.TrainingTotalSteps)
	}
	return cfg, nil
}

func buildDSN(v *viper.Viper) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(v.GetString("DB_USER"), v.GetString("DB_PASSWORD")),
		Host:     v.GetString("DB_HOST") + ":" + v.GetString("DB_PORT"),
		Path:     "/" + v.GetString("DB_NAME"),
		RawQuery: "sslmode=disable&connect_timeout=2",
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
