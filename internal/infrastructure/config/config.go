package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWT      JWTConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Media    MediaConfig
	Throttle ThrottleConfig
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL,  default=15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL, default=168h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=momo_cakes"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type MediaConfig struct {
	Endpoint      string `env:"MEDIA_S3_ENDPOINT"`
	Region        string `env:"MEDIA_S3_REGION,  default=us-east-1"`
	Bucket        string `env:"MEDIA_S3_BUCKET,  default=momo-cakes"`
	AccessKey     string `env:"MEDIA_S3_ACCESS_KEY"`
	SecretKey     string `env:"MEDIA_S3_SECRET_KEY"`
	PublicBaseURL string `env:"MEDIA_PUBLIC_BASE_URL"`
	Folder        string `env:"MEDIA_FOLDER, default=momo-cakes/products"`
}

type ThrottleConfig struct {
	MaxFailures int64         `env:"LOGIN_MAX_FAILURES, default=5"`
	Lockout     time.Duration `env:"LOGIN_LOCKOUT,      default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
