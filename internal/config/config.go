package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	applog "bookmarket/internal/log"
)

type Config struct {
	Port     string `yaml:"port"`
	DBDSN    string `yaml:"dbDSN"`
	MediaDir string `yaml:"mediaDir"`
	LogFile  string `yaml:"logFile"`
	LogLevel string `yaml:"logLevel"`

	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`

	RedisAddr     string        `yaml:"redisAddr"`
	RedisPassword string        `yaml:"redisPassword"`
	LockTTL       time.Duration `yaml:"lockTTL"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	SeedDemo        bool `yaml:"seedDemo"`
	ExposeResetCode bool `yaml:"exposeResetCode"`
	BodyLimit       int  `yaml:"bodyLimit"`
}

// Load reads .env (if present), then CONFIG_FILE (if set), then the process
// environment. Later sources win; unset keys fall back to defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		applog.Logger().Warn().Err(err).Msg("config: .env ignored")
	}
	cfg := Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			applog.Logger().Warn().Err(err).Str("path", path).Msg("config: file ignored")
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)

	applog.Logger().Info().
		Str("port", cfg.Port).
		Str("db_dsn", cfg.DBDSN).
		Str("media_dir", cfg.MediaDir).
		Str("log_file", cfg.LogFile).
		Bool("redis", cfg.RedisAddr != "").
		Bool("minio", cfg.MinioEndpoint != "").
		Msg("config loaded")
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DBDSN)
	str("MEDIA_DIR", &cfg.MediaDir)
	str("LOG_FILE", &cfg.LogFile)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("JWT_SECRET", &cfg.JWTSecret)
	duration("TOKEN_TTL", &cfg.TokenTTL)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("REDIS_PASSWORD", &cfg.RedisPassword)
	duration("LOCK_TTL", &cfg.LockTTL)
	str("MINIO_ENDPOINT", &cfg.MinioEndpoint)
	str("MINIO_ACCESS_KEY", &cfg.MinioAccessKey)
	str("MINIO_SECRET_KEY", &cfg.MinioSecretKey)
	str("MINIO_BUCKET", &cfg.MinioBucket)
	boolean("MINIO_USE_SSL", &cfg.MinioUseSSL)
	boolean("SEED_DEMO", &cfg.SeedDemo)
	boolean("EXPOSE_RESET_CODE", &cfg.ExposeResetCode)
	if v := os.Getenv("BODY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BodyLimit = n
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = "bookmarket.db" // sqlite file in project root
	}
	if cfg.MediaDir == "" {
		cfg.MediaDir = "./media"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Second
	}
	if cfg.MinioBucket == "" {
		cfg.MinioBucket = "covers"
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 4 << 20 // covers are uploaded as multipart
	}
}
