package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageDriverS3    = "s3"
	StorageDriverLocal = "local"
)

type Config struct {
	Env           string              `yaml:"env" env:"ENV" env-default:"local"`
	DSN           string              `yaml:"dsn" env:"DATABASE_DSN" env-required:"true"`
	HTTP          HTTPConfig          `yaml:"http"`
	Auth          AuthConfig          `yaml:"auth"`
	Redis         RedisConf           `yaml:"redis"`
	ObjectStorage ObjectStorageConfig `yaml:"object_storage"`
	FileStorage   FileStorageConfig   `yaml:"file_storage"`
	Uploads       UploadsConfig       `yaml:"uploads"`
	Sweeper       SweeperConfig       `yaml:"sweeper"`
	Categories    CategoriesConfig    `yaml:"categories"`
}

type HTTPConfig struct {
	Host        string        `yaml:"host" env:"HTTP_HOST"`
	Port        string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	CORSOrigins []string      `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-default:"*"`
}

type AuthConfig struct {
	TokenSecret   string        `yaml:"token_secret" env:"AUTH_TOKEN_SECRET" env-required:"true"`
	SessionSecret string        `yaml:"session_secret" env:"AUTH_SESSION_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"168h"`
	AdminEmail    string        `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
}

// ObjectStorageConfig selects where uploaded media lives. The local driver
// uses FileStorage and is meant for development.
type ObjectStorageConfig struct {
	Driver          string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"s3"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	PublicBaseURL   string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	PathStyle       bool   `yaml:"path_style" env:"S3_PATH_STYLE" env-default:"true"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"http://localhost:8080/uploads"`
}

type UploadsConfig struct {
	MaxSize int64 `yaml:"max_size" env:"UPLOADS_MAX_SIZE" env-default:"10485760"`
}

type SweeperConfig struct {
	Enabled     bool          `yaml:"enabled" env:"SWEEPER_ENABLED" env-default:"true"`
	Interval    time.Duration `yaml:"interval" env-default:"6h"`
	GracePeriod time.Duration `yaml:"grace_period" env-default:"24h"`
}

type CategoriesConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl" env-default:"5m"`
}

// MustLoad reads the config from path, falling back to CONFIG_PATH.
// A .env file in the working directory is applied first if present.
func MustLoad(path string) *Config {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	cfg, err := LoadPath(configPath)
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

func LoadPath(configPath string) (*Config, error) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, &LoadError{msg: "config file does not exist: " + configPath}
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, &LoadError{msg: "cannot read config: " + err.Error()}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return &LoadError{msg: "sweeper.interval must be positive, got " + c.Sweeper.Interval.String()}
	}
	if c.Sweeper.GracePeriod < 0 {
		return &LoadError{msg: "sweeper.grace_period must not be negative, got " + c.Sweeper.GracePeriod.String()}
	}
	if c.Uploads.MaxSize <= 0 {
		return &LoadError{msg: "uploads.max_size must be positive"}
	}

	return nil
}

type LoadError struct {
	msg string
}

func (e *LoadError) Error() string {
	return e.msg
}
