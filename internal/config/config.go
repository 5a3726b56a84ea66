package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	GatewayConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetLocale() string
}

type APIConfig interface {
	GetAPIURL() string
	GetHTTPTimeout() time.Duration
}

type StorageConfig interface {
	GetDataFolder() string
	GetProfile() string
	GetStorageQuota() int64
	GetDatabasePath() string
}

type GatewayConfig interface {
	GetRootDomain() string
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

// settings is the raw environment, parsed once by New.
type settings struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	AppName      string        `env:"APP_NAME" envDefault:"Storefront"`
	Env          string        `env:"ENV" envDefault:"DEV"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	Locale       string        `env:"STOREFRONT_LOCALE" envDefault:"ko-KR"`
	APIURL       string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8000/api/v1"`
	HTTPTimeout  time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"30s"`
	DataFolder   string        `env:"STOREFRONT_DATA_FOLDER" envDefault:"./data"`
	Profile      string        `env:"STOREFRONT_PROFILE" envDefault:"default"`
	StorageQuota int64         `env:"STOREFRONT_STORAGE_QUOTA" envDefault:"5242880"` // 5 MiB, the usual browser localStorage limit
	RootDomain   string        `env:"STOREFRONT_ROOT_DOMAIN" envDefault:"class-on.kr"`
	Origins      []string      `env:"STOREFRONT_ALLOWED_ORIGINS" envSeparator:","`
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Cors
}

// New parses the process environment into a Config.
func New() (Config, error) {
	var s settings
	if err := ParseEnv(&s); err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars: EnvVars{s: s},
		API:     API{s: s},
		Storage: Storage{s: s},
		Cors:    newCors(s),
	}, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
